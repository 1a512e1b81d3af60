// Package domain defines the core entities of the funding discovery pipeline.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainStatus represents the processing state of a registered domain.
type DomainStatus string

const (
	// DomainStatusDiscovered is the initial state after registration.
	DomainStatusDiscovered DomainStatus = "DISCOVERED"
	// DomainStatusProcessing marks a domain currently being processed.
	DomainStatusProcessing DomainStatus = "PROCESSING"
	// DomainStatusProcessedHighQuality marks a domain with at least one
	// high-confidence candidate.
	DomainStatusProcessedHighQuality DomainStatus = "PROCESSED_HIGH_QUALITY"
	// DomainStatusProcessedLowQuality marks a domain with only low-confidence
	// observations.
	DomainStatusProcessedLowQuality DomainStatus = "PROCESSED_LOW_QUALITY"
	// DomainStatusBlacklisted marks a domain permanently excluded by an admin.
	// Blacklisting never expires and is never reversed automatically.
	DomainStatusBlacklisted DomainStatus = "BLACKLISTED"
	// DomainStatusNoFundsThisYear marks a legitimate funder with no programs
	// in the recorded year; eligible for re-checking in later years.
	DomainStatusNoFundsThisYear DomainStatus = "NO_FUNDS_THIS_YEAR"
	// DomainStatusProcessingFailed marks a domain whose processing failed and
	// is waiting out its retry backoff.
	DomainStatusProcessingFailed DomainStatus = "PROCESSING_FAILED"
)

// Domain is the persistent per-domain registry record. Domains are the unit
// of cross-session deduplication: one row per registrable host name.
type Domain struct {
	ID         uuid.UUID    `db:"domain_id"   json:"domain_id"`
	DomainName string       `db:"domain_name" json:"domain_name"`
	Status     DomainStatus `db:"status"      json:"status"`

	DiscoveredAt       time.Time  `db:"discovered_at"        json:"discovered_at"`
	DiscoverySessionID uuid.UUID  `db:"discovery_session_id" json:"discovery_session_id"`
	LastProcessedAt    *time.Time `db:"last_processed_at"    json:"last_processed_at,omitempty"`
	ProcessingCount    int        `db:"processing_count"     json:"processing_count"`

	BestConfidenceScore       *Score `db:"best_confidence_score"        json:"best_confidence_score,omitempty"`
	HighQualityCandidateCount int    `db:"high_quality_candidate_count" json:"high_quality_candidate_count"`
	LowQualityCandidateCount  int    `db:"low_quality_candidate_count"  json:"low_quality_candidate_count"`

	BlacklistedBy   *uuid.UUID `db:"blacklisted_by"   json:"blacklisted_by,omitempty"`
	BlacklistedAt   *time.Time `db:"blacklisted_at"   json:"blacklisted_at,omitempty"`
	BlacklistReason string     `db:"blacklist_reason" json:"blacklist_reason,omitempty"`

	NoFundsYear *int `db:"no_funds_year" json:"no_funds_year,omitempty"`

	FailureCount  int        `db:"failure_count"  json:"failure_count"`
	FailureReason string     `db:"failure_reason" json:"failure_reason,omitempty"`
	RetryAfter    *time.Time `db:"retry_after"    json:"retry_after,omitempty"`
}

// IsBlacklisted reports whether the domain is permanently excluded.
func (d *Domain) IsBlacklisted() bool {
	return d.Status == DomainStatusBlacklisted
}
