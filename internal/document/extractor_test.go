package document_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spigell/cv-ranker/internal/document"
	"github.com/spigell/cv-ranker/internal/document/documenttest"
)

func TestExtractValidDocuments(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "a.pdf")
	documenttest.WritePDF(t, pdfPath, "Engineer with 5 years Java", "Led a team of four")

	docxPath := filepath.Join(dir, "B.DOCX")
	documenttest.WriteDOCX(t, docxPath, "Recent graduate", "no experience")

	extractor := document.NewExtractor()

	pdfDoc := extractor.Extract(pdfPath)
	if pdfDoc.Failed() {
		t.Fatalf("unexpected pdf failure: %v", pdfDoc.Err)
	}
	if pdfDoc.Name != "a.pdf" {
		t.Fatalf("unexpected name: %q", pdfDoc.Name)
	}
	first := strings.Index(pdfDoc.Text, "Engineer with 5 years Java")
	second := strings.Index(pdfDoc.Text, "Led a team of four")
	if first == -1 || second == -1 || first > second {
		t.Fatalf("expected both pages in order, got %q", pdfDoc.Text)
	}

	docxDoc := extractor.Extract(docxPath)
	if docxDoc.Failed() {
		t.Fatalf("unexpected docx failure: %v", docxDoc.Err)
	}
	if !strings.Contains(docxDoc.Text, "Recent graduate") || !strings.Contains(docxDoc.Text, "no experience") {
		t.Fatalf("unexpected docx text: %q", docxDoc.Text)
	}
	if strings.Index(docxDoc.Text, "Recent graduate") > strings.Index(docxDoc.Text, "no experience") {
		t.Fatalf("paragraph order not preserved: %q", docxDoc.Text)
	}
}

func TestExtractFailuresBecomeErrorText(t *testing.T) {
	dir := t.TempDir()

	corruptPDF := filepath.Join(dir, "broken.pdf")
	documenttest.WriteCorrupt(t, corruptPDF)

	corruptDOCX := filepath.Join(dir, "broken.docx")
	documenttest.WriteCorrupt(t, corruptDOCX)

	unsupported := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unsupported, []byte("plain"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "corrupt pdf", path: corruptPDF},
		{name: "corrupt docx", path: corruptDOCX},
		{name: "missing file", path: filepath.Join(dir, "absent.pdf")},
		{name: "unsupported extension", path: unsupported},
	}

	extractor := document.NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := extractor.Extract(tt.path)
			if !doc.Failed() {
				t.Fatalf("expected failure, got text %q", doc.Text)
			}
			if !strings.HasPrefix(doc.Text, document.ErrorPrefix) {
				t.Fatalf("expected error prefix, got %q", doc.Text)
			}
			var extractErr *document.ExtractionError
			if !errors.As(doc.Err, &extractErr) {
				t.Fatalf("expected ExtractionError, got %T", doc.Err)
			}
			if extractErr.Path != tt.path {
				t.Fatalf("unexpected path in error: %q", extractErr.Path)
			}
		})
	}
}

func TestExtractRecoversFromReaderPanic(t *testing.T) {
	extractor := document.NewExtractor()
	extractor.Register(".PDF", document.ReaderFunc(func(string) (string, error) {
		panic("malformed xref table")
	}))

	doc := extractor.Extract("/tmp/panic.pdf")
	if !doc.Failed() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(doc.Text, "malformed xref table") {
		t.Fatalf("expected panic message in text, got %q", doc.Text)
	}
}

func TestSupported(t *testing.T) {
	cases := map[string]bool{
		"cv.pdf":       true,
		"CV.PDF":       true,
		"resume.docx":  true,
		"resume.DocX":  true,
		"resume.doc":   false,
		"notes.txt":    false,
		"pdf":          false,
		"archive.pdf/": false,
	}

	for name, want := range cases {
		if got := document.Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestUnsupportedFormatIsWrapped(t *testing.T) {
	doc := document.NewExtractor().Extract("resume.odt")
	if !errors.Is(doc.Err, document.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", doc.Err)
	}
}
