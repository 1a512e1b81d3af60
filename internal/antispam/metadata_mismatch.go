package antispam

import (
	"math"
	"regexp"
	"strings"
)

// similarityThreshold is deliberately strict: legitimate short domains can
// score below it, which the other detectors and the scoring threshold absorb.
const similarityThreshold = 0.15

// minTokenLen drops very short tokens from both word vectors.
const minTokenLen = 3

var (
	tldSuffixRe   = regexp.MustCompile(`\.(com|org|net|edu|gov|io|co)$`)
	nonAlphanumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// DomainMetadataMismatchDetector flags results whose domain keywords are
// unrelated to the page metadata, e.g. "casinowinners.com" titled
// "Education Scholarships".
type DomainMetadataMismatchDetector struct{}

// Detect reports whether the domain and metadata are unrelated (cosine
// similarity of their word vectors below the threshold). Blank domain or
// metadata is never spam.
func (DomainMetadataMismatchDetector) Detect(domainName, title, description string) bool {
	if strings.TrimSpace(domainName) == "" {
		return false
	}

	metadata := strings.TrimSpace(title + " " + description)
	if metadata == "" {
		return false
	}

	domainKeywords := extractDomainKeywords(domainName)
	if domainKeywords == "" {
		return false
	}

	domainVector := buildWordVector(domainKeywords)
	metadataVector := buildWordVector(metadata)

	return cosineSimilarity(domainVector, metadataVector) < similarityThreshold
}

// extractDomainKeywords strips the TLD and splits the remainder into
// space-separated keyword tokens, e.g. "casinowinners.com" -> "casinowinners".
func extractDomainKeywords(domainName string) string {
	withoutTLD := tldSuffixRe.ReplaceAllString(strings.ToLower(domainName), "")
	parts := nonAlphanumRe.Split(withoutTLD, -1)

	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= minTokenLen {
			keywords = append(keywords, p)
		}
	}
	return strings.Join(keywords, " ")
}

// buildWordVector builds a word frequency vector, ignoring very short words.
func buildWordVector(text string) map[string]int {
	vector := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) >= minTokenLen {
			vector[word]++
		}
	}
	return vector
}

// cosineSimilarity computes the cosine of the angle between two word
// frequency vectors. Returns 0 when either vector is empty.
func cosineSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for word, countA := range a {
		if countB, ok := b[word]; ok {
			dot += float64(countA) * float64(countB)
		}
		normA += float64(countA) * float64(countA)
	}
	for _, countB := range b {
		normB += float64(countB) * float64(countB)
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
