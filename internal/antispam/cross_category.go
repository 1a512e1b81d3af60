package antispam

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Vice-industry vocabularies matched against the domain name, and the
// funding/education vocabulary matched against page metadata. Kept small and
// specific on purpose: a broader net starts catching legitimate domains.
var (
	gamblingVocab = []string{
		"casino", "poker", "betting", "bet", "win", "lottery",
		"jackpot", "slots", "gamble", "wager",
	}
	essayMillVocab = []string{
		"essay", "paper", "dissertation", "thesis", "assignment",
		"homework", "writeessay", "essaywriter",
	}
	educationVocab = []string{
		"scholarship", "grant", "funding", "education", "student",
		"tuition", "financial aid", "college", "university",
	}
)

// CrossCategorySpamDetector flags vice-industry domains (gambling, essay
// mills) that advertise funding or education content, e.g. "bestcasino.com"
// titled "Free Scholarships and Grants". Single-pass substring matching via
// Aho-Corasick automata built once at construction.
type CrossCategorySpamDetector struct {
	gambling  *ahocorasick.Matcher
	essayMill *ahocorasick.Matcher
	education *ahocorasick.Matcher
}

// NewCrossCategorySpamDetector builds the matchers.
func NewCrossCategorySpamDetector() *CrossCategorySpamDetector {
	return &CrossCategorySpamDetector{
		gambling:  ahocorasick.NewStringMatcher(gamblingVocab),
		essayMill: ahocorasick.NewStringMatcher(essayMillVocab),
		education: ahocorasick.NewStringMatcher(educationVocab),
	}
}

// Detect reports whether the domain belongs to a vice category while the
// metadata claims funding or education content. Both conditions must hold.
func (d *CrossCategorySpamDetector) Detect(domainName, title, description string) bool {
	dom := strings.ToLower(strings.TrimSpace(domainName))
	if dom == "" {
		return false
	}

	domBytes := []byte(dom)
	viceDomain := len(d.gambling.Match(domBytes)) > 0 || len(d.essayMill.Match(domBytes)) > 0
	if !viceDomain {
		return false
	}

	metadata := strings.ToLower(strings.TrimSpace(title + " " + description))
	if metadata == "" {
		return false
	}

	return len(d.education.Match([]byte(metadata))) > 0
}
