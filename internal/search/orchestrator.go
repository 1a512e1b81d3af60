package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/northstar-funding/discovery/internal/antispam"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
	"github.com/northstar-funding/discovery/internal/metrics"
	"github.com/northstar-funding/discovery/internal/scoring"
)

// ErrAllProvidersFailed is returned when no provider produced results.
var ErrAllProvidersFailed = errors.New("all search providers failed")

// DomainRegistry is the slice of the registry the pipeline needs.
type DomainRegistry interface {
	Register(ctx context.Context, name string, sessionID uuid.UUID) (*domain.Domain, error)
	ShouldProcess(ctx context.Context, name string) (bool, error)
	UpdateCandidateCounts(ctx context.Context, name string, highDelta, lowDelta int, observed domain.Score) error
}

// SessionStore finalizes the owning discovery-session record.
type SessionStore interface {
	Finalize(ctx context.Context, sessionID uuid.UUID, status domain.SessionStatus,
		stats domain.SessionStatistics, candidatesFound int, errorMessage string) error
}

// CandidateStore persists emitted review candidates.
type CandidateStore interface {
	Create(ctx context.Context, c *domain.Candidate) error
}

// Orchestrator fans a query pair out to every configured provider, joins all
// outcomes and drives the aggregation pipeline: spam filter, blacklist gate,
// per-domain dedup, scoring, registry updates and candidate emission.
//
// The provider slice order is the fixed tie-break order: when two providers
// report the same domain at the same rank, the earlier provider wins.
type Orchestrator struct {
	providers  []Provider
	filter     *antispam.Filter
	scorer     *scoring.ConfidenceScorer
	registry   DomainRegistry
	sessions   SessionStore
	candidates CandidateStore
	telemetry  *metrics.Provider
	log        logger.Logger
}

// NewOrchestrator wires the pipeline. telemetry may be nil in tests.
func NewOrchestrator(
	providers []Provider,
	filter *antispam.Filter,
	scorer *scoring.ConfidenceScorer,
	registry DomainRegistry,
	sessions SessionStore,
	candidates CandidateStore,
	telemetry *metrics.Provider,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		providers:  providers,
		filter:     filter,
		scorer:     scorer,
		registry:   registry,
		sessions:   sessions,
		candidates: candidates,
		telemetry:  telemetry,
		log:        log,
	}
}

// providerOutcome is one provider's joined task result.
type providerOutcome struct {
	id      domain.ProviderID
	query   string
	results []domain.RawSearchResult
	err     error
}

// ExecuteMultiProviderSearch dispatches one task per configured provider
// concurrently, joins them all without cancelling stragglers, and runs the
// aggregation pipeline over whatever succeeded. Keyword-style providers
// receive keywordQuery; AI-style providers receive aiOptimizedQuery. Only
// total provider failure is a hard error; it marks the session FAILED.
func (o *Orchestrator) ExecuteMultiProviderSearch(
	ctx context.Context,
	keywordQuery, aiOptimizedQuery string,
	maxResults int,
	sessionID uuid.UUID,
) (*ExecutionResult, error) {
	start := time.Now()

	o.log.Info("starting multi-provider search",
		logger.String("session_id", sessionID.String()),
		logger.Int("providers", len(o.providers)),
		logger.Int("max_results", maxResults))

	outcomes := o.dispatch(ctx, keywordQuery, aiOptimizedQuery, maxResults, sessionID)

	result := &ExecutionResult{
		Statistics: domain.SessionStatistics{
			ResultsByProvider: make(map[domain.ProviderID]int),
		},
	}

	for _, out := range outcomes {
		if out.err != nil {
			provErr := newProviderError(out.id, out.query, out.err)
			result.Errors = append(result.Errors, provErr)
			if o.telemetry != nil {
				o.telemetry.RecordProviderError(string(out.id), string(provErr.ErrorType))
			}
			o.log.Warn("provider failed",
				logger.String("provider", string(out.id)),
				logger.String("error_type", string(provErr.ErrorType)),
				logger.Error(out.err))
			continue
		}

		result.providerSuccesses++
		result.Statistics.ResultsByProvider[out.id] = len(out.results)
		if o.telemetry != nil {
			o.telemetry.RecordProviderResults(string(out.id), len(out.results))
		}
	}

	if result.IsCompleteFailure() {
		messages := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			messages = append(messages, fmt.Sprintf("%s: %s", e.Provider, e.Message))
		}
		errMsg := fmt.Sprintf("%s: %s", ErrAllProvidersFailed, strings.Join(messages, "; "))

		o.finalizeSession(ctx, sessionID, domain.SessionStatusFailed, result, errMsg)
		if o.telemetry != nil {
			o.telemetry.RecordSearch("failed", time.Since(start))
		}
		return nil, fmt.Errorf("%w: %s", ErrAllProvidersFailed, strings.Join(messages, "; "))
	}

	o.aggregate(ctx, outcomes, sessionID, result)

	o.finalizeSession(ctx, sessionID, domain.SessionStatusCompleted, result, "")

	outcome := "full"
	if result.IsPartialSuccess() {
		outcome = "partial"
	}
	if o.telemetry != nil {
		o.telemetry.RecordSearch(outcome, time.Since(start))
	}

	o.log.Info("multi-provider search completed",
		logger.String("session_id", sessionID.String()),
		logger.String("outcome", outcome),
		logger.Int("results", len(result.Results)),
		logger.Int("candidates", len(result.Candidates)),
		logger.Int("errors", len(result.Errors)),
		logger.Duration("duration", time.Since(start)))

	return result, nil
}

// dispatch runs every provider concurrently and joins all of them. A slow
// provider is never cancelled by a fast one; each adapter bounds itself.
func (o *Orchestrator) dispatch(
	ctx context.Context,
	keywordQuery, aiOptimizedQuery string,
	maxResults int,
	sessionID uuid.UUID,
) []providerOutcome {
	outcomes := make([]providerOutcome, len(o.providers))

	var wg sync.WaitGroup
	wg.Add(len(o.providers))
	for i, p := range o.providers {
		go func(idx int, p Provider) {
			defer wg.Done()

			query := keywordQuery
			if p.SupportsAIOptimizedQueries() && !p.SupportsKeywordQueries() {
				query = aiOptimizedQuery
			}

			results, err := p.Search(ctx, query, maxResults)
			if err == nil {
				stamp(results, p.ID(), sessionID)
			}
			outcomes[idx] = providerOutcome{
				id:      p.ID(),
				query:   query,
				results: results,
				err:     err,
			}
		}(i, p)
	}
	wg.Wait()

	return outcomes
}

// aggregate runs the filtering pipeline over all successful outcomes, in
// provider order, and fills in the final results, candidates and statistics.
func (o *Orchestrator) aggregate(
	ctx context.Context,
	outcomes []providerOutcome,
	sessionID uuid.UUID,
	result *ExecutionResult,
) {
	rawCount := 0

	// One survivor per domain, the lowest rank position winning. Iteration
	// is in provider order, so an earlier provider wins rank ties.
	best := make(map[string]*domain.RawSearchResult)
	order := make([]string, 0)

	for _, out := range outcomes {
		if out.err != nil {
			continue
		}
		for i := range out.results {
			raw := &out.results[i]
			rawCount++

			if raw.Domain == "" {
				continue
			}

			if analysis := o.filter.Analyze(raw); analysis.IsSpam {
				o.recordSpam(ctx, raw, analysis, sessionID)
				continue
			}

			ok, err := o.registry.ShouldProcess(ctx, raw.Domain)
			if err != nil {
				o.log.Error("blacklist check failed",
					logger.String("domain", raw.Domain), logger.Error(err))
				continue
			}
			if !ok {
				if o.telemetry != nil {
					o.telemetry.RecordBlacklistSkipped()
				}
				continue
			}

			current, seen := best[raw.Domain]
			if !seen {
				best[raw.Domain] = raw
				order = append(order, raw.Domain)
				continue
			}
			if raw.RankPosition < current.RankPosition {
				best[raw.Domain] = raw
			}
			result.Statistics.DuplicateDomainsSkipped++
			if o.telemetry != nil {
				o.telemetry.RecordDuplicateSkipped()
			}
		}
	}

	for _, name := range order {
		raw := best[name]

		d, err := o.registry.Register(ctx, name, sessionID)
		if err != nil {
			o.log.Error("domain registration failed",
				logger.String("domain", name), logger.Error(err))
			continue
		}
		if d.DiscoverySessionID == sessionID {
			result.Statistics.NewDomainsDiscovered++
			if o.telemetry != nil {
				o.telemetry.RecordDomainRegistered()
			}
		}

		score := o.scorer.ScoreResult(raw)
		if score.IsHighConfidence() {
			candidate := scoring.NewCandidate(raw, d.ID, score)
			if err := o.candidates.Create(ctx, candidate); err != nil {
				o.log.Error("candidate persistence failed",
					logger.String("domain", name), logger.Error(err))
			}
			result.Candidates = append(result.Candidates, *candidate)
			if o.telemetry != nil {
				o.telemetry.RecordCandidateEmitted()
			}
			o.updateCounts(ctx, name, 1, 0, score)
		} else {
			if o.telemetry != nil {
				o.telemetry.RecordLowQualityObservation()
			}
			o.updateCounts(ctx, name, 0, 1, score)
		}

		result.Results = append(result.Results, *raw)
	}

	// spamResultsFiltered is a combined bucket: everything dropped between
	// the raw collection and the final list, spam and duplicates alike.
	result.Statistics.TotalResultsFound = len(result.Results)
	result.Statistics.SpamResultsFiltered = rawCount - len(result.Results)
}

// recordSpam registers a spam result's domain and tallies it as a
// low-quality observation so repeat offenders accumulate history.
func (o *Orchestrator) recordSpam(ctx context.Context, raw *domain.RawSearchResult, analysis antispam.Analysis, sessionID uuid.UUID) {
	if o.telemetry != nil {
		o.telemetry.RecordSpamFiltered(string(analysis.PrimaryIndicator))
	}
	o.log.Debug("spam filtered",
		logger.String("domain", raw.Domain),
		logger.String("indicator", string(analysis.PrimaryIndicator)),
		logger.String("reason", analysis.RejectionReason))

	if _, err := o.registry.Register(ctx, raw.Domain, sessionID); err != nil {
		o.log.Error("spam domain registration failed",
			logger.String("domain", raw.Domain), logger.Error(err))
		return
	}
	o.updateCounts(ctx, raw.Domain, 0, 1, domain.MinScore)
}

// updateCounts applies quality counters, logging persistence failures
// without invalidating decisions already made in this pass.
func (o *Orchestrator) updateCounts(ctx context.Context, name string, high, low int, score domain.Score) {
	if err := o.registry.UpdateCandidateCounts(ctx, name, high, low, score); err != nil {
		o.log.Error("domain counter update failed",
			logger.String("domain", name), logger.Error(err))
	}
}

func (o *Orchestrator) finalizeSession(ctx context.Context, sessionID uuid.UUID, status domain.SessionStatus, result *ExecutionResult, errMsg string) {
	err := o.sessions.Finalize(ctx, sessionID, status, result.Statistics, len(result.Candidates), errMsg)
	if err != nil {
		o.log.Error("session finalization failed",
			logger.String("session_id", sessionID.String()), logger.Error(err))
	}
}

// stamp fills provider-independent fields on freshly fetched results.
func stamp(results []domain.RawSearchResult, id domain.ProviderID, sessionID uuid.UUID) {
	now := time.Now().UTC()
	for i := range results {
		results[i].Provider = id
		results[i].SessionID = sessionID
		if results[i].Domain == "" {
			results[i].Domain = domain.ExtractDomain(results[i].URL)
		}
		if results[i].DiscoveredAt.IsZero() {
			results[i].DiscoveredAt = now
		}
		if results[i].RankPosition == 0 {
			results[i].RankPosition = i + 1
		}
	}
}
