package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/veridex-labs/veridex/internal/domain"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// parseText splits plain text and markdown into paragraph-delimited
// segments. Binary input is rejected so the chain can fall through.
func parseText(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "input is not valid UTF-8 text")
	}
	return segmentsFromText(string(data)), nil
}

// segmentsFromText turns free text into one segment per paragraph.
func segmentsFromText(text string) *Result {
	result := &Result{}
	for _, para := range blankLine.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		result.Segments = append(result.Segments, Segment{Text: para})
	}
	return result
}
