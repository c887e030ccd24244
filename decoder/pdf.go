package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFDecoder extracts the text layer of a PDF using ledongthuc/pdf,
// concatenating pages in order. Pages whose text cannot be decoded are
// skipped rather than failing the whole document.
type PDFDecoder struct{}

// CanDecode returns true for PDF content types or .pdf names.
func (d *PDFDecoder) CanDecode(contentType, name string) bool {
	return containsAny(contentType, "application/pdf") || hasAnySuffix(name, ".pdf")
}

// Decode parses the PDF text layer. Image-only PDFs yield an empty string.
func (d *PDFDecoder) Decode(name string, content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf %s: %w", name, err)
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
