package document

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type pdfReader struct{}

// NewPDFReader returns a reader concatenating the plain text of every page in order.
func NewPDFReader() Reader {
	return &pdfReader{}
}

func (p *pdfReader) ReadText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	total := r.NumPage()

	for index := 1; index <= total; index++ {
		page := r.Page(index)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", index, err)
		}

		builder.WriteString(text)
	}

	return builder.String(), nil
}
