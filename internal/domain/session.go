package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a discovery session.
type SessionStatus string

const (
	// SessionStatusRunning marks a session currently executing searches.
	SessionStatusRunning SessionStatus = "RUNNING"
	// SessionStatusCompleted marks a session that produced results (full or
	// partial provider success).
	SessionStatusCompleted SessionStatus = "COMPLETED"
	// SessionStatusFailed marks a session where every provider failed.
	SessionStatusFailed SessionStatus = "FAILED"
)

// DiscoverySession is one discovery run. Statistics are attached exactly once
// when the session is finalized.
type DiscoverySession struct {
	ID                uuid.UUID     `db:"session_id"         json:"session_id"`
	Status            SessionStatus `db:"status"             json:"status"`
	KeywordQuery      string        `db:"keyword_query"      json:"keyword_query"`
	AIOptimizedQuery  string        `db:"ai_optimized_query" json:"ai_optimized_query"`
	StartedAt         time.Time     `db:"started_at"         json:"started_at"`
	CompletedAt       *time.Time    `db:"completed_at"       json:"completed_at,omitempty"`
	CandidatesFound   int           `db:"candidates_found"   json:"candidates_found"`
	DomainsDiscovered int           `db:"domains_discovered" json:"domains_discovered"`
	ResultsFiltered   int           `db:"results_filtered"   json:"results_filtered"`
	ErrorMessage      string        `db:"error_message"      json:"error_message,omitempty"`
}

// SessionStatistics summarizes one orchestration pass. Created when the
// orchestrator starts and finalized once.
//
// SpamResultsFiltered is a combined metric: it counts raw results dropped for
// any reason between collection and the final list (spam, blacklist,
// intra-batch duplicates), not spam verdicts alone.
type SessionStatistics struct {
	TotalResultsFound       int                `json:"total_results_found"`
	NewDomainsDiscovered    int                `json:"new_domains_discovered"`
	DuplicateDomainsSkipped int                `json:"duplicate_domains_skipped"`
	SpamResultsFiltered     int                `json:"spam_results_filtered"`
	ResultsByProvider       map[ProviderID]int `json:"results_by_provider"`
}

// TotalRawResults returns the pre-filtering result count across providers.
func (s *SessionStatistics) TotalRawResults() int {
	total := 0
	for _, n := range s.ResultsByProvider {
		total += n
	}
	return total
}
