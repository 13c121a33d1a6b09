// Package document turns candidate resume files into plain text.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrorPrefix starts the text that replaces a document whose extraction failed.
const ErrorPrefix = "Error extracting text: "

const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
)

// ErrUnsupportedFormat is returned for files with an extension no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is the extraction outcome for one candidate file.
// When Err is set, Text holds a readable error message instead of document text.
type Document struct {
	Name string
	Path string
	Text string
	Err  error
}

// Failed reports whether the text of the document is an error message.
func (d Document) Failed() bool {
	return d.Err != nil
}

// ExtractionError describes a single file that could not be read.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting text from %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Reader extracts plain text from a single document format.
type Reader interface {
	ReadText(path string) (string, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(path string) (string, error)

func (f ReaderFunc) ReadText(path string) (string, error) {
	return f(path)
}

// SupportedExtensions lists the extensions candidate files may have, lowercase.
func SupportedExtensions() []string {
	return []string{ExtPDF, ExtDOCX}
}

// Supported reports whether name has a supported extension, ignoring case.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
