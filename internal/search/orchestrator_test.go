package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-funding/discovery/internal/antispam"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
	"github.com/northstar-funding/discovery/internal/registry"
	"github.com/northstar-funding/discovery/internal/scoring"
	"github.com/northstar-funding/discovery/internal/testhelpers"
)

type fakeProvider struct {
	id       domain.ProviderID
	keyword  bool
	ai       bool
	results  []domain.RawSearchResult
	err      error
	mu       sync.Mutex
	gotQuery string
}

func (p *fakeProvider) ID() domain.ProviderID            { return p.id }
func (p *fakeProvider) SupportsKeywordQueries() bool     { return p.keyword }
func (p *fakeProvider) SupportsAIOptimizedQueries() bool { return p.ai }

func (p *fakeProvider) Search(_ context.Context, query string, _ int) ([]domain.RawSearchResult, error) {
	p.mu.Lock()
	p.gotQuery = query
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	results := make([]domain.RawSearchResult, len(p.results))
	copy(results, p.results)
	return results, nil
}

type fakeRegistry struct {
	mu          sync.Mutex
	domains     map[string]*domain.Domain
	blacklisted map[string]bool
	highCounts  map[string]int
	lowCounts   map[string]int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		domains:     make(map[string]*domain.Domain),
		blacklisted: make(map[string]bool),
		highCounts:  make(map[string]int),
		lowCounts:   make(map[string]int),
	}
}

func (r *fakeRegistry) Register(_ context.Context, name string, sessionID uuid.UUID) (*domain.Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.domains[name]; ok {
		return d, nil
	}
	d := &domain.Domain{
		ID:                 uuid.New(),
		DomainName:         name,
		Status:             domain.DomainStatusDiscovered,
		DiscoverySessionID: sessionID,
	}
	r.domains[name] = d
	return d, nil
}

func (r *fakeRegistry) ShouldProcess(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.blacklisted[name], nil
}

func (r *fakeRegistry) UpdateCandidateCounts(_ context.Context, name string, highDelta, lowDelta int, _ domain.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highCounts[name] += highDelta
	r.lowCounts[name] += lowDelta
	return nil
}

type fakeSessions struct {
	mu         sync.Mutex
	finalized  bool
	status     domain.SessionStatus
	stats      domain.SessionStatistics
	candidates int
	errMsg     string
}

func (s *fakeSessions) Finalize(_ context.Context, _ uuid.UUID, status domain.SessionStatus,
	stats domain.SessionStatistics, candidatesFound int, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true
	s.status = status
	s.stats = stats
	s.candidates = candidatesFound
	s.errMsg = errorMessage
	return nil
}

type fakeCandidates struct {
	mu      sync.Mutex
	created []domain.Candidate
}

func (c *fakeCandidates) Create(_ context.Context, candidate *domain.Candidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, *candidate)
	return nil
}

func newTestOrchestrator(providers []Provider, reg *fakeRegistry) (*Orchestrator, *fakeSessions, *fakeCandidates) {
	log := logger.NewNop()
	sessions := &fakeSessions{}
	candidates := &fakeCandidates{}
	o := NewOrchestrator(
		providers,
		antispam.NewFilter(log),
		scoring.NewConfidenceScorer(log),
		reg,
		sessions,
		candidates,
		nil,
		log,
	)
	return o, sessions, candidates
}

func highQualityResult(rank int) domain.RawSearchResult {
	return domain.RawSearchResult{
		URL:          "https://grants.gov/youth",
		Domain:       "grants.gov",
		Title:        "Youth Education Grants for Bulgarian Students - Ministry of Education",
		Description:  "Government funding and scholarships for university students in Bulgaria",
		RankPosition: rank,
	}
}

func lowQualityResult(rank int) domain.RawSearchResult {
	return domain.RawSearchResult{
		URL:          "https://example.io/blog",
		Domain:       "example.io",
		Title:        "Example for the blog and news",
		Description:  "Our example blog posts for the community and friends",
		RankPosition: rank,
	}
}

func spamResult(rank int) domain.RawSearchResult {
	return domain.RawSearchResult{
		URL:          "https://bestcasino.com/free-money",
		Domain:       "bestcasino.com",
		Title:        "Free Scholarships Grants Funding",
		Description:  "Education Financial Aid",
		RankPosition: rank,
	}
}

func TestOrchestrator_FullSuccess_EmitsCandidate(t *testing.T) {
	reg := newFakeRegistry()
	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{highQualityResult(1)}},
		&fakeProvider{id: domain.ProviderTavily, ai: true, results: []domain.RawSearchResult{lowQualityResult(1)}},
	}
	o, sessions, candidates := newTestOrchestrator(providers, reg)

	sessionID := uuid.New()
	result, err := o.ExecuteMultiProviderSearch(context.Background(), "education grants bulgaria", "find funding for students", 10, sessionID)
	require.NoError(t, err)

	assert.True(t, result.IsFullSuccess())
	assert.False(t, result.IsPartialSuccess())
	assert.Len(t, result.Results, 2)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "https://grants.gov/youth", result.Candidates[0].SourceURL)
	assert.Equal(t, domain.CandidateStatusPendingReview, result.Candidates[0].Status)
	assert.True(t, result.Candidates[0].ConfidenceScore.IsHighConfidence())

	// Registry observations: one high-quality hit, one low-quality hit.
	assert.Equal(t, 1, reg.highCounts["grants.gov"])
	assert.Equal(t, 1, reg.lowCounts["example.io"])

	// Persisted candidate matches the emitted one.
	require.Len(t, candidates.created, 1)
	assert.Equal(t, result.Candidates[0].ID, candidates.created[0].ID)

	assert.True(t, sessions.finalized)
	assert.Equal(t, domain.SessionStatusCompleted, sessions.status)
	assert.Equal(t, 1, sessions.candidates)
	assert.Equal(t, 2, sessions.stats.NewDomainsDiscovered)
}

func TestOrchestrator_QueryRouting(t *testing.T) {
	reg := newFakeRegistry()
	keywordProv := &fakeProvider{id: domain.ProviderBrave, keyword: true}
	aiProv := &fakeProvider{id: domain.ProviderTavily, ai: true}
	o, _, _ := newTestOrchestrator([]Provider{keywordProv, aiProv}, reg)

	_, err := o.ExecuteMultiProviderSearch(context.Background(), "kw query", "ai query", 10, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "kw query", keywordProv.gotQuery)
	assert.Equal(t, "ai query", aiProv.gotQuery)
}

func TestOrchestrator_PartialSuccess_RateLimit(t *testing.T) {
	reg := newFakeRegistry()
	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{highQualityResult(1)}},
		&fakeProvider{id: domain.ProviderSearXNG, keyword: true, results: nil},
		&fakeProvider{id: domain.ProviderSerper, keyword: true, err: errors.New("Rate limit exceeded")},
		&fakeProvider{id: domain.ProviderTavily, ai: true, results: nil},
	}
	o, sessions, _ := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.NoError(t, err)

	assert.True(t, result.IsPartialSuccess())
	assert.False(t, result.IsFullSuccess())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.ProviderSerper, result.Errors[0].Provider)
	assert.Equal(t, ErrorTypeRateLimit, result.Errors[0].ErrorType)

	// Partial success still completes the session.
	assert.Equal(t, domain.SessionStatusCompleted, sessions.status)
}

func TestOrchestrator_AllProvidersFail(t *testing.T) {
	reg := newFakeRegistry()
	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, err: errors.New("connection refused")},
		&fakeProvider{id: domain.ProviderSearXNG, keyword: true, err: errors.New("request timeout")},
		&fakeProvider{id: domain.ProviderSerper, keyword: true, err: errors.New("401 unauthorized")},
		&fakeProvider{id: domain.ProviderTavily, ai: true, err: errors.New("Rate limit exceeded")},
	}
	o, sessions, _ := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Contains(t, err.Error(), "all search providers failed")

	assert.True(t, sessions.finalized)
	assert.Equal(t, domain.SessionStatusFailed, sessions.status)
	assert.Contains(t, sessions.errMsg, "all search providers failed")
}

func TestOrchestrator_DedupKeepsLowestRank(t *testing.T) {
	reg := newFakeRegistry()
	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{highQualityResult(1)}},
		&fakeProvider{id: domain.ProviderSearXNG, keyword: true, results: []domain.RawSearchResult{highQualityResult(5)}},
		&fakeProvider{id: domain.ProviderSerper, keyword: true, results: []domain.RawSearchResult{highQualityResult(3)}},
	}
	o, _, _ := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Results[0].RankPosition)
	assert.Equal(t, 2, result.Statistics.DuplicateDomainsSkipped)
	assert.Equal(t, 1, result.Statistics.TotalResultsFound)
	assert.Equal(t, 2, result.Statistics.SpamResultsFiltered,
		"combined filtered bucket counts intra-batch duplicates")

	// One domain, one quality observation despite three raw hits.
	assert.Equal(t, 1, reg.highCounts["grants.gov"])
}

func TestOrchestrator_RankTieBreaksOnProviderOrder(t *testing.T) {
	reg := newFakeRegistry()
	braveHit := highQualityResult(2)
	searxngHit := highQualityResult(2)
	searxngHit.URL = "https://grants.gov/other"

	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{braveHit}},
		&fakeProvider{id: domain.ProviderSearXNG, keyword: true, results: []domain.RawSearchResult{searxngHit}},
	}
	o, _, _ := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, domain.ProviderBrave, result.Results[0].Provider)
	assert.Equal(t, "https://grants.gov/youth", result.Results[0].URL)
}

func TestOrchestrator_SpamIsFilteredAndCountedAgainstDomain(t *testing.T) {
	reg := newFakeRegistry()
	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{
			spamResult(1),
			highQualityResult(2),
		}},
	}
	o, _, _ := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "grants.gov", result.Results[0].Domain)

	// The spam domain is still registered and tallied as low quality.
	_, registered := reg.domains["bestcasino.com"]
	assert.True(t, registered)
	assert.Equal(t, 1, reg.lowCounts["bestcasino.com"])
	assert.Equal(t, 1, result.Statistics.SpamResultsFiltered)
}

func TestOrchestrator_BlacklistedDomainIsDropped(t *testing.T) {
	reg := newFakeRegistry()
	reg.blacklisted["grants.gov"] = true

	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{highQualityResult(1)}},
	}
	o, _, candidates := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.NoError(t, err)

	assert.Empty(t, result.Results)
	assert.Empty(t, candidates.created)
	// Blacklisted domains accumulate no further observations.
	assert.Zero(t, reg.lowCounts["grants.gov"])
	assert.Zero(t, reg.highCounts["grants.gov"])
}

func TestOrchestrator_PerProviderRawCounts(t *testing.T) {
	reg := newFakeRegistry()
	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{highQualityResult(1), lowQualityResult(2)}},
		&fakeProvider{id: domain.ProviderSearXNG, keyword: true, results: []domain.RawSearchResult{spamResult(1)}},
	}
	o, _, _ := newTestOrchestrator(providers, reg)

	result, err := o.ExecuteMultiProviderSearch(context.Background(), "kw", "ai", 10, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Statistics.ResultsByProvider[domain.ProviderBrave])
	assert.Equal(t, 1, result.Statistics.ResultsByProvider[domain.ProviderSearXNG])
	assert.Equal(t, 3, result.Statistics.TotalRawResults())
}

func TestOrchestrator_EndToEndWithRegistry(t *testing.T) {
	log := logger.NewNop()
	store := testhelpers.NewMemoryDomainStore()
	reg := registry.New(store, log)

	providers := []Provider{
		&fakeProvider{id: domain.ProviderBrave, keyword: true, results: []domain.RawSearchResult{
			highQualityResult(1),
			lowQualityResult(2),
		}},
		&fakeProvider{id: domain.ProviderSearXNG, keyword: true, results: []domain.RawSearchResult{
			spamResult(1),
		}},
	}

	sessions := &fakeSessions{}
	candidates := &fakeCandidates{}
	o := NewOrchestrator(providers, antispam.NewFilter(log), scoring.NewConfidenceScorer(log),
		reg, sessions, candidates, nil, log)

	ctx := context.Background()
	result, err := o.ExecuteMultiProviderSearch(ctx, "education grants bulgaria", "find funding", 10, uuid.New())
	require.NoError(t, err)

	assert.Len(t, result.Results, 2)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, 3, store.Len(), "spam domains are registered too")

	high, err := reg.Get(ctx, "grants.gov")
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusProcessedHighQuality, high.Status)
	require.NotNil(t, high.BestConfidenceScore)
	assert.Equal(t, result.Candidates[0].ConfidenceScore, *high.BestConfidenceScore)

	low, err := reg.Get(ctx, "example.io")
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusProcessedLowQuality, low.Status)
	assert.Equal(t, 1, low.LowQualityCandidateCount)

	spam, err := reg.Get(ctx, "bestcasino.com")
	require.NoError(t, err)
	assert.Equal(t, domain.DomainStatusProcessedLowQuality, spam.Status)
	assert.Equal(t, 1, spam.LowQualityCandidateCount)
}
