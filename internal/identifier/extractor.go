// Package identifier locates domain reference numbers (offence, notice and
// ticket numbers) in free text using weighted, validated regex candidates.
package identifier

import (
	"regexp"
	"strings"
)

const (
	// MinConfidence is the acceptance threshold below which a candidate is
	// treated as noise rather than a reference number.
	MinConfidence = 0.6

	keywordWindow = 100

	keywordBonus = 0.1
	lengthBonus  = 0.2

	minNormalizedLen = 6
	maxNormalizedLen = 12
)

// Result is the outcome of an extraction. Confidence is 0 when no valid
// candidate was found.
type Result struct {
	Value      string
	Confidence float64
}

// candidateClass pairs a pattern with its base weight. Lower priority value
// wins ties on equal confidence.
type candidateClass struct {
	name     string
	pattern  *regexp.Regexp
	weight   float64
	priority int
}

// Extractor runs an ordered list of regex classes over case-normalized text
// and scores each validated match.
type Extractor struct {
	classes  []candidateClass
	keywords []string
}

// New builds an Extractor with the standard candidate classes.
func New() *Extractor {
	return &Extractor{
		classes: []candidateClass{
			{
				name:     "explicit-label",
				pattern:  regexp.MustCompile(`(?:offence|offense|infringement)\s*(?:no|number|num|#)?\.?\s*:?\s*([a-z]{0,3}-?\d[a-z0-9/-]{4,13})`),
				weight:   0.7,
				priority: 0,
			},
			{
				name:     "notice-label",
				pattern:  regexp.MustCompile(`(?:notice|ticket|citation|violation|summons|penalty)\s*(?:no|number|num|#)?\.?\s*:?\s*([a-z]{0,3}-?\d[a-z0-9/-]{4,13})`),
				weight:   0.6,
				priority: 1,
			},
			{
				name:     "region-prefixed",
				pattern:  regexp.MustCompile(`\b((?:nsw|vic|qld|wa|sa|tas|act|nt)[-\s]?\d{5,10})\b`),
				weight:   0.5,
				priority: 2,
			},
			{
				name:     "alphanumeric",
				pattern:  regexp.MustCompile(`\b([a-z]{1,3}\d{5,11})\b`),
				weight:   0.4,
				priority: 3,
			},
			{
				name:     "bare-numeric",
				pattern:  regexp.MustCompile(`\b(\d{6,12})\b`),
				weight:   0.3,
				priority: 4,
			},
		},
		keywords: []string{"offence", "offense", "ticket", "citation", "violation", "notice", "summons"},
	}
}

type candidate struct {
	value      string
	confidence float64
	priority   int
}

// Extract returns the highest-confidence reference number in the text.
// Candidates are ranked by confidence descending, ties broken by class
// priority. Candidates below MinConfidence are discarded.
func (e *Extractor) Extract(text string) Result {
	lower := strings.ToLower(text)

	var best *candidate
	for _, class := range e.classes {
		for _, loc := range class.pattern.FindAllStringSubmatchIndex(lower, -1) {
			raw := lower[loc[2]:loc[3]]
			normalized := normalize(raw)
			if !validate(raw, normalized) {
				continue
			}

			confidence := class.weight
			if e.keywordNearby(lower, loc[0]) {
				confidence += keywordBonus
			}
			if digitLen := len(normalized); digitLen >= 9 && digitLen <= 12 {
				confidence += lengthBonus
			}
			if confidence > 1.0 {
				confidence = 1.0
			}
			if confidence < MinConfidence {
				continue
			}

			c := candidate{value: strings.ToUpper(normalized), confidence: confidence, priority: class.priority}
			if best == nil ||
				c.confidence > best.confidence ||
				(c.confidence == best.confidence && c.priority < best.priority) {
				best = &c
			}
		}
	}

	if best == nil {
		return Result{}
	}
	return Result{Value: best.value, Confidence: best.confidence}
}

// keywordNearby reports whether a domain keyword occurs within keywordWindow
// characters before or after the match position.
func (e *Extractor) keywordNearby(lower string, pos int) bool {
	start := pos - keywordWindow
	if start < 0 {
		start = 0
	}
	end := pos + keywordWindow
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]
	for _, kw := range e.keywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

func normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '-', '/', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	dateSeparated = regexp.MustCompile(`^\d{1,4}[/.-]\d{1,2}[/.-]\d{2,4}$`)
	yyyymmdd      = regexp.MustCompile(`^(19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])$`)
	ddmmyyyy      = regexp.MustCompile(`^(0[1-9]|[12]\d|3[01])(0[1-9]|1[0-2])(19|20)\d{2}$`)
)

// validate applies the pre-scoring checks: normalized length bounds, at
// least one digit, and rejection of date-like and phone-like sequences.
func validate(raw, normalized string) bool {
	if len(normalized) < minNormalizedLen || len(normalized) > maxNormalizedLen {
		return false
	}

	hasDigit := false
	for _, r := range normalized {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}

	if looksLikeDate(raw, normalized) {
		return false
	}
	if looksLikePhone(normalized) {
		return false
	}
	return true
}

func looksLikeDate(raw, normalized string) bool {
	if dateSeparated.MatchString(raw) {
		return true
	}
	if len(normalized) == 8 && (yyyymmdd.MatchString(normalized) || ddmmyyyy.MatchString(normalized)) {
		return true
	}
	return false
}

// looksLikePhone flags 10-11 digit sequences with a leading trunk or
// country digit, the shape of AU and NANP subscriber numbers.
func looksLikePhone(normalized string) bool {
	if len(normalized) != 10 && len(normalized) != 11 {
		return false
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return false
		}
	}
	return normalized[0] == '0' || normalized[0] == '1'
}
