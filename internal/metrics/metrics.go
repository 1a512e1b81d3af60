// Package metrics exports Prometheus metrics for the discovery pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all discovery Prometheus metrics.
type Metrics struct {
	// Orchestration metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration prometheus.Histogram

	// Provider metrics
	ProviderResults *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec

	// Pipeline metrics
	SpamFiltered       *prometheus.CounterVec
	BlacklistSkipped   prometheus.Counter
	DuplicatesSkipped  prometheus.Counter
	CandidatesEmitted  prometheus.Counter
	DomainsRegistered  prometheus.Counter
	LowQualityObserved prometheus.Counter
}

// Provider wraps the metric set behind recording helpers.
type Provider struct {
	Metrics *Metrics
}

// NewProvider initializes and registers all metrics on the default registry.
func NewProvider() *Provider {
	return &Provider{Metrics: initMetrics()}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}

	m.SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_searches_total",
		Help: "Total multi-provider search executions by outcome (full, partial, failed)",
	}, []string{"outcome"})

	m.SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "discovery_search_duration_seconds",
		Help:    "End-to-end duration of one multi-provider search",
		Buckets: []float64{0.5, 1, 2, 5, 7, 10, 15, 30},
	})

	m.ProviderResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_provider_results_total",
		Help: "Raw results returned per provider",
	}, []string{"provider"})

	m.ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_provider_errors_total",
		Help: "Provider failures by provider and error type",
	}, []string{"provider", "error_type"})

	m.SpamFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_spam_filtered_total",
		Help: "Results discarded by the anti-spam filter, by primary indicator",
	}, []string{"indicator"})

	m.BlacklistSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_blacklist_skipped_total",
		Help: "Results discarded because their domain is blacklisted",
	})

	m.DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_duplicates_skipped_total",
		Help: "Results discarded by intra-batch domain deduplication",
	})

	m.CandidatesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_candidates_emitted_total",
		Help: "High-confidence candidates emitted for human review",
	})

	m.DomainsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_domains_registered_total",
		Help: "New domains added to the registry",
	})

	m.LowQualityObserved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_low_quality_observations_total",
		Help: "Results scored below the candidate threshold",
	})

	return m
}

// RecordSearch records one orchestration pass.
func (p *Provider) RecordSearch(outcome string, duration time.Duration) {
	p.Metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	p.Metrics.SearchDuration.Observe(duration.Seconds())
}

// RecordProviderResults adds to a provider's raw result counter.
func (p *Provider) RecordProviderResults(provider string, count int) {
	p.Metrics.ProviderResults.WithLabelValues(provider).Add(float64(count))
}

// RecordProviderError records one classified provider failure.
func (p *Provider) RecordProviderError(provider, errorType string) {
	p.Metrics.ProviderErrors.WithLabelValues(provider, errorType).Inc()
}

// RecordSpamFiltered records one spam verdict by its primary indicator.
func (p *Provider) RecordSpamFiltered(indicator string) {
	p.Metrics.SpamFiltered.WithLabelValues(indicator).Inc()
}

// RecordBlacklistSkipped records one result dropped at the blacklist gate.
func (p *Provider) RecordBlacklistSkipped() {
	p.Metrics.BlacklistSkipped.Inc()
}

// RecordDuplicateSkipped records one result dropped by intra-batch dedup.
func (p *Provider) RecordDuplicateSkipped() {
	p.Metrics.DuplicatesSkipped.Inc()
}

// RecordCandidateEmitted records one emitted review candidate.
func (p *Provider) RecordCandidateEmitted() {
	p.Metrics.CandidatesEmitted.Inc()
}

// RecordDomainRegistered records one newly registered domain.
func (p *Provider) RecordDomainRegistered() {
	p.Metrics.DomainsRegistered.Inc()
}

// RecordLowQualityObservation records one below-threshold score.
func (p *Provider) RecordLowQualityObservation() {
	p.Metrics.LowQualityObserved.Inc()
}
