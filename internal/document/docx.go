package document

import (
	"fmt"
	"os"

	"code.sajari.com/docconv"
)

type docxReader struct{}

// NewDOCXReader returns a reader producing paragraph text joined by newlines.
func NewDOCXReader() Reader {
	return &docxReader{}
}

func (d *docxReader) ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	text, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}

	return text, nil
}
