package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extractor picks a Reader by file extension and never fails a caller:
// every problem is folded into the returned Document.
type Extractor struct {
	readers map[string]Reader
}

// NewExtractor returns an extractor with the PDF and DOCX readers registered.
func NewExtractor() *Extractor {
	return &Extractor{
		readers: map[string]Reader{
			ExtPDF:  NewPDFReader(),
			ExtDOCX: NewDOCXReader(),
		},
	}
}

// Register sets the reader used for ext, replacing any previous one. It is the
// hook for swapping a parser backend, such as an OCR-capable PDF reader; a new
// format also has to be listed in SupportedExtensions before folder scans keep it.
func (e *Extractor) Register(ext string, reader Reader) {
	if e.readers == nil {
		e.readers = make(map[string]Reader)
	}
	e.readers[strings.ToLower(ext)] = reader
}

// Extract reads the document at path. On failure the document text is
// replaced with a message starting with ErrorPrefix and Err is set.
func (e *Extractor) Extract(path string) Document {
	doc := Document{
		Name: filepath.Base(path),
		Path: path,
	}

	text, err := e.read(path)
	if err != nil {
		extractErr := &ExtractionError{Path: path, Err: err}
		doc.Err = extractErr
		doc.Text = ErrorPrefix + err.Error()
		return doc
	}

	doc.Text = text
	return doc
}

func (e *Extractor) read(path string) (text string, err error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := e.readers[ext]
	if !ok || reader == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	// Parsers of untrusted files may panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()

	return reader.ReadText(path)
}
