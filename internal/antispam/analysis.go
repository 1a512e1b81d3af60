// Package antispam implements the composite spam filter applied to raw
// search results before aggregation. Four independent heuristic detectors run
// in a fixed order; a result is spam when any of them fires.
package antispam

// Indicator identifies the heuristic category that flagged a result.
type Indicator string

const (
	// IndicatorNone means no detector fired.
	IndicatorNone Indicator = ""
	// IndicatorKeywordStuffing means the unique-word ratio fell below 0.5.
	IndicatorKeywordStuffing Indicator = "KEYWORD_STUFFING"
	// IndicatorDomainMetadataMismatch means domain keywords are unrelated to
	// the page metadata (cosine similarity below 0.15).
	IndicatorDomainMetadataMismatch Indicator = "DOMAIN_METADATA_MISMATCH"
	// IndicatorUnnaturalKeywordList means the text lacks natural language
	// structure (fewer than 2 distinct connector words).
	IndicatorUnnaturalKeywordList Indicator = "UNNATURAL_KEYWORD_LIST"
	// IndicatorCrossCategorySpam means a vice-industry domain carries
	// funding/education metadata.
	IndicatorCrossCategorySpam Indicator = "CROSS_CATEGORY_SPAM"
)

// Analysis is the verdict for one raw result. Produced fresh per result and
// never stored.
type Analysis struct {
	IsSpam           bool      `json:"is_spam"`
	PrimaryIndicator Indicator `json:"primary_indicator,omitempty"`
	Confidence       float64   `json:"confidence"` // 0.0-1.0
	RejectionReason  string    `json:"rejection_reason,omitempty"`
}

// NotSpam is the zero verdict for clean or unanalyzable input.
func NotSpam() Analysis {
	return Analysis{}
}
