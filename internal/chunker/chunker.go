// Package chunker splits text into bounded, overlapping passages on
// paragraph and word boundaries.
package chunker

import (
	"regexp"
	"strings"
)

const (
	DefaultMaxChars = 1000
	DefaultOverlap  = 200
)

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Chunk splits text into passages of at most maxSize characters. Paragraphs
// are accumulated until the next one would overflow; the emitted passage
// seeds its successor with a word-tail of up to overlap characters.
// Paragraphs longer than maxSize are split at word granularity under the
// same rule. The bound is relaxed only for a single word longer than
// maxSize, which is never split. A text shorter than maxSize yields exactly
// one passage.
func Chunk(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}

	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if len(clean) <= maxSize {
		return []string{clean}
	}

	var passages []string
	buf := ""

	// append one piece (paragraph or word), emitting the buffer and seeding
	// the overlap tail when the piece would overflow it
	add := func(piece, sep string) {
		if buf == "" {
			buf = piece
			return
		}
		if len(buf)+len(sep)+len(piece) <= maxSize {
			buf += sep + piece
			return
		}
		passages = append(passages, buf)
		tail := wordTail(buf, overlap)
		if tail != "" && len(tail)+1+len(piece) <= maxSize {
			buf = tail + " " + piece
		} else {
			buf = piece
		}
	}

	for _, para := range splitParagraphs(clean) {
		if len(para) <= maxSize {
			add(para, "\n\n")
			continue
		}
		for _, word := range strings.Fields(para) {
			add(word, " ")
		}
	}

	if strings.TrimSpace(buf) != "" {
		passages = append(passages, buf)
	}
	return passages
}

func splitParagraphs(text string) []string {
	parts := paragraphSplit.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// wordTail returns the longest suffix of whole words totalling at most
// overlap characters.
func wordTail(s string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	words := strings.Fields(s)
	total := 0
	i := len(words)
	for i > 0 {
		cost := len(words[i-1])
		if total > 0 {
			cost++
		}
		if total+cost > overlap {
			break
		}
		total += cost
		i--
	}
	return strings.Join(words[i:], " ")
}
