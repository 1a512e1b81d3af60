package api

import (
	"github.com/google/uuid"

	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/search"
)

// SearchRequest starts one discovery session.
type SearchRequest struct {
	KeywordQuery     string `json:"keyword_query"      binding:"required"`
	AIOptimizedQuery string `json:"ai_optimized_query"`
	MaxResults       int    `json:"max_results"`
}

// ProviderErrorResponse is one classified provider failure in a search
// response.
type ProviderErrorResponse struct {
	Provider  string `json:"provider"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// SearchResponse reports the outcome of one discovery session.
type SearchResponse struct {
	SessionID       uuid.UUID                `json:"session_id"`
	Status          domain.SessionStatus     `json:"status"`
	Statistics      domain.SessionStatistics `json:"statistics"`
	CandidatesFound int                      `json:"candidates_found"`
	Candidates      []domain.Candidate       `json:"candidates"`
	Errors          []ProviderErrorResponse  `json:"errors,omitempty"`
}

// BlacklistRequest permanently excludes a domain.
type BlacklistRequest struct {
	BlacklistedBy uuid.UUID `json:"blacklisted_by" binding:"required"`
	Reason        string    `json:"reason"         binding:"required"`
}

// NoFundsRequest marks a legitimate funder without programs this year.
// Year defaults to the current UTC year when omitted.
type NoFundsRequest struct {
	Year int `json:"year"`
}

// UpdateCandidateStatusRequest moves a candidate through review.
type UpdateCandidateStatusRequest struct {
	Status domain.CandidateStatus `json:"status" binding:"required,oneof=PENDING_REVIEW APPROVED REJECTED"`
}

// DomainsListResponse is a list of domain registry records.
type DomainsListResponse struct {
	Domains []domain.Domain `json:"domains"`
	Total   int             `json:"total"`
}

// CandidatesListResponse is a list of review candidates.
type CandidatesListResponse struct {
	Candidates []domain.Candidate `json:"candidates"`
	Total      int                `json:"total"`
}

// toProviderErrors converts classified provider failures to response form.
func toProviderErrors(errs []search.ProviderError) []ProviderErrorResponse {
	if len(errs) == 0 {
		return nil
	}
	out := make([]ProviderErrorResponse, len(errs))
	for i, e := range errs {
		out[i] = ProviderErrorResponse{
			Provider:  string(e.Provider),
			ErrorType: string(e.ErrorType),
			Message:   e.Message,
		}
	}
	return out
}
