package antispam

import "strings"

// minConnectorWords is the minimum distinct connector words natural prose is
// expected to contain.
const minConnectorWords = 2

// connectorWords are articles, prepositions and conjunctions whose absence
// marks a bare keyword list rather than natural language.
var connectorWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "for": {}, "to": {},
	"in": {}, "with": {}, "on": {}, "at": {}, "by": {}, "from": {},
	"as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "and": {}, "or": {}, "but": {}, "if": {}, "this": {},
	"that": {}, "these": {}, "those": {},
}

// UnnaturalKeywordListDetector flags metadata that reads as a comma-style
// keyword dump, e.g. "grants, scholarships, funding, money, free money".
type UnnaturalKeywordListDetector struct{}

// Detect reports whether the text lacks natural language structure: fewer
// than two distinct connector words. Blank text is never spam.
func (UnnaturalKeywordListDetector) Detect(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}

	distinct := make(map[string]struct{})
	for _, word := range strings.Fields(normalized) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if _, ok := connectorWords[word]; ok {
			distinct[word] = struct{}{}
		}
	}

	return len(distinct) < minConnectorWords
}
