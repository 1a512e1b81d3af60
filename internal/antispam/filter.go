package antispam

import (
	"fmt"
	"math"

	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

// confidencePerIndicator is the spam confidence contributed by each detector
// that fires, capped at 1.0.
const confidencePerIndicator = 0.35

var indicatorReasons = map[Indicator]string{
	IndicatorKeywordStuffing:        "excessive keyword repetition in metadata",
	IndicatorDomainMetadataMismatch: "domain name unrelated to page metadata",
	IndicatorUnnaturalKeywordList:   "metadata lacks natural language structure",
	IndicatorCrossCategorySpam:      "vice-industry domain with funding/education metadata",
}

// Filter runs the four spam detectors against a raw search result. Stateless
// and safe for concurrent use.
type Filter struct {
	stuffing      KeywordStuffingDetector
	mismatch      DomainMetadataMismatchDetector
	keywordList   UnnaturalKeywordListDetector
	crossCategory *CrossCategorySpamDetector
	log           logger.Logger
}

// NewFilter builds a Filter with all detectors enabled.
func NewFilter(log logger.Logger) *Filter {
	return &Filter{
		crossCategory: NewCrossCategorySpamDetector(),
		log:           log,
	}
}

// Analyze runs every detector and aggregates the verdict. The result is spam
// when any detector fires; the primary indicator is the first that fired in
// detector order and the confidence grows with the number of detectors that
// agreed. A nil result is never spam.
func (f *Filter) Analyze(result *domain.RawSearchResult) Analysis {
	if result == nil {
		return NotSpam()
	}

	metadata := result.Title + " " + result.Description

	var fired []Indicator
	if f.stuffing.Detect(metadata) {
		fired = append(fired, IndicatorKeywordStuffing)
	}
	if f.mismatch.Detect(result.Domain, result.Title, result.Description) {
		fired = append(fired, IndicatorDomainMetadataMismatch)
	}
	if f.keywordList.Detect(metadata) {
		fired = append(fired, IndicatorUnnaturalKeywordList)
	}
	if f.crossCategory.Detect(result.Domain, result.Title, result.Description) {
		fired = append(fired, IndicatorCrossCategorySpam)
	}

	if len(fired) == 0 {
		return NotSpam()
	}

	primary := fired[0]
	analysis := Analysis{
		IsSpam:           true,
		PrimaryIndicator: primary,
		Confidence:       math.Min(1.0, confidencePerIndicator*float64(len(fired))),
		RejectionReason:  fmt.Sprintf("%s (%d indicators)", indicatorReasons[primary], len(fired)),
	}

	if f.log != nil {
		f.log.Debug("result flagged as spam",
			logger.String("domain", result.Domain),
			logger.String("indicator", string(primary)),
			logger.Float64("confidence", analysis.Confidence))
	}

	return analysis
}
