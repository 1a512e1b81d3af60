package scoring

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

// Score increments in hundredths.
const (
	titleKeywordScore       domain.Score = 15
	descriptionKeywordScore domain.Score = 10
	geographicScore         domain.Score = 15
	organizationScore       domain.Score = 15
	compoundBoost           domain.Score = 15

	// compoundSignalThreshold is the signal count at which the compound
	// boost applies.
	compoundSignalThreshold = 3
)

var fundingVocab = []string{
	"grant", "grants", "funding", "scholarship", "scholarships",
	"fellowship", "fellowships", "subsidy", "subsidies",
	"bursary", "bursaries", "award", "awards",
	"stipend", "stipends", "financial aid", "financial support",
	"sponsorship", "endowment",
}

var geographicVocab = []string{
	"bulgaria", "bulgarian", "българия", "българск",
	"eu", "european union", "europe", "european",
	"eastern europe", "балкан", "balkan",
	"romania", "romanian", "românia",
	"poland", "polish", "polska",
	"czech", "czechia", "české",
	"regional", "local",
}

var organizationVocab = []string{
	"ministry", "minister", "министерство",
	"commission", "commissioner", "комисия",
	"foundation", "фондация", "fund",
	"university", "университет", "college",
	"government", "правителство", "official",
	"national", "state", "federal",
	"agency", "агенция", "authority",
	"council", "съвет", "chamber",
}

// ConfidenceScorer combines TLD credibility with metadata signals to judge
// how likely a search result represents a legitimate funding source.
// Stateless after construction and safe for concurrent use.
type ConfidenceScorer struct {
	funding      *ahocorasick.Matcher
	geographic   *ahocorasick.Matcher
	organization *ahocorasick.Matcher
	log          logger.Logger
}

// NewConfidenceScorer builds the keyword automata.
func NewConfidenceScorer(log logger.Logger) *ConfidenceScorer {
	return &ConfidenceScorer{
		funding:      ahocorasick.NewStringMatcher(fundingVocab),
		geographic:   ahocorasick.NewStringMatcher(geographicVocab),
		organization: ahocorasick.NewStringMatcher(organizationVocab),
		log:          log,
	}
}

// Score computes the confidence score for a search result from its metadata
// and URL alone:
//
//  1. Start with the TLD credibility score (-0.30 to +0.20).
//  2. +0.15 if the title contains funding keywords.
//  3. +0.10 if the description contains funding keywords.
//  4. +0.15 on a geographic match in title or description.
//  5. +0.15 on an organization-type match in title or description.
//  6. +0.15 compound boost when at least 3 signals fired.
//  7. Clamp to [0.00, 1.00].
func (s *ConfidenceScorer) Score(title, description, rawURL string) domain.Score {
	score := TLDScore(rawURL)

	signals := 0
	if s.matches(s.funding, title) {
		score += titleKeywordScore
		signals++
	}
	if s.matches(s.funding, description) {
		score += descriptionKeywordScore
		signals++
	}
	if s.matches(s.geographic, title) || s.matches(s.geographic, description) {
		score += geographicScore
		signals++
	}
	if s.matches(s.organization, title) || s.matches(s.organization, description) {
		score += organizationScore
		signals++
	}

	if signals >= compoundSignalThreshold {
		score += compoundBoost
	}

	score = score.Clamp()

	if s.log != nil {
		s.log.Debug("scored search result",
			logger.String("url", rawURL),
			logger.Int("signals", signals),
			logger.String("score", score.String()))
	}

	return score
}

// ScoreResult scores a raw search result.
func (s *ConfidenceScorer) ScoreResult(result *domain.RawSearchResult) domain.Score {
	if result == nil {
		return domain.MinScore
	}
	return s.Score(result.Title, result.Description, result.URL)
}

func (s *ConfidenceScorer) matches(m *ahocorasick.Matcher, text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	return len(m.Match([]byte(text))) > 0
}
