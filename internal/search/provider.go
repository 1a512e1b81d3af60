// Package search implements the concurrent multi-provider search orchestrator
// and its aggregation pipeline.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/northstar-funding/discovery/internal/domain"
)

// Provider is the single contract every search provider adapter implements.
// Each adapter rate-limits and time-bounds itself; the orchestrator treats
// all providers identically.
type Provider interface {
	ID() domain.ProviderID
	// SupportsKeywordQueries reports whether the provider takes the plain
	// keyword query.
	SupportsKeywordQueries() bool
	// SupportsAIOptimizedQueries reports whether the provider takes the
	// AI-optimized natural-language query.
	SupportsAIOptimizedQueries() bool
	Search(ctx context.Context, query string, maxResults int) ([]domain.RawSearchResult, error)
}

// ErrorType classifies a provider failure.
type ErrorType string

const (
	// ErrorTypeTimeout marks a provider that exceeded its own deadline.
	ErrorTypeTimeout ErrorType = "TIMEOUT"
	// ErrorTypeRateLimit marks a provider that refused the call for quota
	// reasons.
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"
	// ErrorTypeAuthFailure marks a rejected or missing credential.
	ErrorTypeAuthFailure ErrorType = "AUTH_FAILURE"
	// ErrorTypeNetwork is the catch-all for every other failure.
	ErrorTypeNetwork ErrorType = "NETWORK"
)

// ProviderError is one classified provider failure, recorded for reporting
// but never fatal on its own.
type ProviderError struct {
	Provider  domain.ProviderID `json:"provider"`
	ErrorType ErrorType         `json:"error_type"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Query     string            `json:"query"`
}

// ClassifyError maps a provider failure to an ErrorType by inspecting the
// normalized error text. Pure function; unknown failures classify as NETWORK.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return ErrorTypeRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return ErrorTypeTimeout
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return ErrorTypeAuthFailure
	default:
		return ErrorTypeNetwork
	}
}

// newProviderError builds a classified ProviderError from a raw failure.
func newProviderError(id domain.ProviderID, query string, err error) ProviderError {
	return ProviderError{
		Provider:  id,
		ErrorType: ClassifyError(err),
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		Query:     query,
	}
}
