package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// parsePDF extracts the text layer page by page, preserving page numbers.
// Pages without a text layer contribute nothing; a PDF where no page yields
// text produces an empty result, which routes the chain to the OCR method.
func parsePDF(data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	result := &Result{}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// one unreadable page does not sink the document
			continue
		}

		pageNum := i
		for _, para := range blankLine.Split(text, -1) {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			result.Segments = append(result.Segments, Segment{Text: para, Page: &pageNum})
		}
	}

	return result, nil
}
