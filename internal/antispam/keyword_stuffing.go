package antispam

import "strings"

// uniqueRatioThreshold is the unique-word ratio below which text is
// considered keyword-stuffed. A ratio of exactly 0.5 is not spam.
const uniqueRatioThreshold = 0.5

// KeywordStuffingDetector flags text with excessive keyword repetition.
//
// Example: "grants scholarships funding grants scholarships grants funding
// education grants" has 9 words but only 4 unique, ratio 0.44 < 0.5.
type KeywordStuffingDetector struct{}

// Detect reports whether the combined title+description text is
// keyword-stuffed. Empty or blank text is never spam.
func (KeywordStuffingDetector) Detect(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}

	words := strings.Fields(normalized)
	if len(words) == 0 {
		return false
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	ratio := float64(len(unique)) / float64(len(words))
	return ratio < uniqueRatioThreshold
}
