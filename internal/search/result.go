package search

import (
	"github.com/northstar-funding/discovery/internal/domain"
)

// ExecutionResult is the outcome of one multi-provider search: the final
// filtered result list, every classified provider error, the candidates
// emitted for review and the session statistics.
type ExecutionResult struct {
	Results    []domain.RawSearchResult `json:"results"`
	Candidates []domain.Candidate       `json:"candidates"`
	Errors     []ProviderError          `json:"errors"`
	Statistics domain.SessionStatistics `json:"statistics"`

	providerSuccesses int
}

// IsFullSuccess reports whether every dispatched provider succeeded.
func (r *ExecutionResult) IsFullSuccess() bool {
	return r.providerSuccesses > 0 && len(r.Errors) == 0
}

// IsPartialSuccess reports whether at least one provider succeeded and at
// least one failed.
func (r *ExecutionResult) IsPartialSuccess() bool {
	return r.providerSuccesses > 0 && len(r.Errors) > 0
}

// IsCompleteFailure reports whether no provider succeeded.
func (r *ExecutionResult) IsCompleteFailure() bool {
	return r.providerSuccesses == 0
}
