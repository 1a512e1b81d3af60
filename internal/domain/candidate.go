package domain

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus represents the review state of a funding source candidate.
type CandidateStatus string

const (
	// CandidateStatusPendingReview marks a candidate awaiting human review.
	CandidateStatusPendingReview CandidateStatus = "PENDING_REVIEW"
	// CandidateStatusApproved marks a candidate confirmed by a reviewer.
	CandidateStatusApproved CandidateStatus = "APPROVED"
	// CandidateStatusRejected marks a candidate dismissed by a reviewer.
	CandidateStatusRejected CandidateStatus = "REJECTED"
)

// Candidate is a surviving, scored search result judged worth human review
// (confidence score at or above the candidate threshold).
type Candidate struct {
	ID                 uuid.UUID       `db:"candidate_id"         json:"candidate_id"`
	Status             CandidateStatus `db:"status"               json:"status"`
	OrganizationName   string          `db:"organization_name"    json:"organization_name"`
	Description        string          `db:"description"          json:"description"`
	SourceURL          string          `db:"source_url"           json:"source_url"`
	DomainID           uuid.UUID       `db:"domain_id"            json:"domain_id"`
	DiscoverySessionID uuid.UUID       `db:"discovery_session_id" json:"discovery_session_id"`
	ConfidenceScore    Score           `db:"confidence_score"     json:"confidence_score"`
	CreatedAt          time.Time       `db:"created_at"           json:"created_at"`
}
