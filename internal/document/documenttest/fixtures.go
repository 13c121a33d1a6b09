// Package documenttest writes small resume fixtures for tests.
package documenttest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"testing"

	"github.com/go-pdf/fpdf"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// WriteDOCX writes a minimal Word document with one paragraph per entry.
func WriteDOCX(t testing.TB, path string, paragraphs ...string) {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, paragraph := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		if err := xml.EscapeText(&body, []byte(paragraph)); err != nil {
			t.Fatalf("escape paragraph: %v", err)
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	parts := []struct {
		name    string
		content []byte
	}{
		{name: "[Content_Types].xml", content: []byte(contentTypes)},
		{name: "_rels/.rels", content: []byte(rels)},
		{name: "word/document.xml", content: body.Bytes()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("create %s: %v", part.name, err)
		}
		if _, err := w.Write(part.content); err != nil {
			t.Fatalf("write %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close docx archive: %v", err)
	}

	if err := os.WriteFile(path, archive.Bytes(), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}
}

// WritePDF writes a PDF with one page per entry, each page holding one line of text.
func WritePDF(t testing.TB, path string, pages ...string) {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(0, 10, text)
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
}

// WriteCorrupt writes bytes no document reader accepts.
func WriteCorrupt(t testing.TB, path string) {
	t.Helper()

	if err := os.WriteFile(path, []byte("this is not a real document"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
}
