package domain

import "fmt"

// Score is a confidence score with exactly two decimal digits, stored as
// integer hundredths so comparisons against thresholds are exact. Valid
// values range from 0 (0.00) to 100 (1.00); intermediate sums may leave the
// range and must be clamped before use.
type Score int

const (
	// MinScore is the lowest valid confidence score (0.00).
	MinScore Score = 0
	// MaxScore is the highest valid confidence score (1.00).
	MaxScore Score = 100
	// CandidateThreshold is the minimum score for candidate creation (0.60).
	CandidateThreshold Score = 60
)

// Clamp bounds the score to [MinScore, MaxScore].
func (s Score) Clamp() Score {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// IsHighConfidence reports whether the score meets the candidate threshold.
func (s Score) IsHighConfidence() bool {
	return s >= CandidateThreshold
}

// Float64 returns the score as a float for reporting only; never use the
// float form for threshold comparisons.
func (s Score) Float64() float64 {
	return float64(s) / 100.0
}

// String formats the score with two decimal digits, e.g. "0.75".
func (s Score) String() string {
	if s < 0 {
		return fmt.Sprintf("-%d.%02d", -s/100, -s%100)
	}
	return fmt.Sprintf("%d.%02d", s/100, s%100)
}
