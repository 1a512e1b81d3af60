package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-funding/discovery/internal/database"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
	"github.com/northstar-funding/discovery/internal/registry"
	"github.com/northstar-funding/discovery/internal/search"
)

type fakeSearcher struct {
	result       *search.ExecutionResult
	err          error
	gotSessionID uuid.UUID
	gotKeyword   string
	gotAIQuery   string
	gotMax       int
}

func (f *fakeSearcher) ExecuteMultiProviderSearch(_ context.Context, keywordQuery, aiOptimizedQuery string,
	maxResults int, sessionID uuid.UUID) (*search.ExecutionResult, error) {
	f.gotSessionID = sessionID
	f.gotKeyword = keywordQuery
	f.gotAIQuery = aiOptimizedQuery
	f.gotMax = maxResults
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDomains struct {
	records    map[string]*domain.Domain
	retryReady []domain.Domain
	gotYear    int
}

func newFakeDomains() *fakeDomains {
	return &fakeDomains{records: make(map[string]*domain.Domain)}
}

func (f *fakeDomains) Get(_ context.Context, name string) (*domain.Domain, error) {
	d, ok := f.records[name]
	if !ok {
		return nil, registry.ErrDomainNotFound
	}
	return d, nil
}

func (f *fakeDomains) Blacklist(_ context.Context, name string, actorID uuid.UUID, reason string) (*domain.Domain, error) {
	d, ok := f.records[name]
	if !ok {
		d = &domain.Domain{ID: uuid.New(), DomainName: name}
		f.records[name] = d
	}
	d.Status = domain.DomainStatusBlacklisted
	d.BlacklistedBy = &actorID
	d.BlacklistReason = reason
	return d, nil
}

func (f *fakeDomains) MarkNoFundsThisYear(_ context.Context, name string, year int) (*domain.Domain, error) {
	f.gotYear = year
	d, ok := f.records[name]
	if !ok {
		return nil, registry.ErrDomainNotFound
	}
	d.Status = domain.DomainStatusNoFundsThisYear
	d.NoFundsYear = &year
	return d, nil
}

func (f *fakeDomains) FindReadyForRetry(_ context.Context, _ time.Time) ([]domain.Domain, error) {
	return f.retryReady, nil
}

func (f *fakeDomains) List(_ context.Context, status domain.DomainStatus, _ int) ([]domain.Domain, error) {
	out := make([]domain.Domain, 0)
	for _, d := range f.records {
		if status == "" || d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeSessions struct {
	sessions map[uuid.UUID]*domain.DiscoverySession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[uuid.UUID]*domain.DiscoverySession)}
}

func (f *fakeSessions) Create(_ context.Context, s *domain.DiscoverySession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (*domain.DiscoverySession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, database.ErrSessionNotFound
	}
	return s, nil
}

type fakeCandidates struct {
	candidates map[uuid.UUID]*domain.Candidate
}

func newFakeCandidates() *fakeCandidates {
	return &fakeCandidates{candidates: make(map[uuid.UUID]*domain.Candidate)}
}

func (f *fakeCandidates) ListByStatus(_ context.Context, status domain.CandidateStatus, _ int) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0)
	for _, c := range f.candidates {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCandidates) UpdateStatus(_ context.Context, id uuid.UUID, status domain.CandidateStatus) error {
	c, ok := f.candidates[id]
	if !ok {
		return database.ErrCandidateNotFound
	}
	c.Status = status
	return nil
}

type testEnv struct {
	router     *gin.Engine
	searcher   *fakeSearcher
	domains    *fakeDomains
	sessions   *fakeSessions
	candidates *fakeCandidates
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		searcher:   &fakeSearcher{result: &search.ExecutionResult{}},
		domains:    newFakeDomains(),
		sessions:   newFakeSessions(),
		candidates: newFakeCandidates(),
	}

	handler := NewHandler(env.searcher, env.domains, env.domains,
		env.sessions, env.candidates, nil, 20, logger.NewNop())

	env.router = gin.New()
	SetupRoutes(env.router, handler, nil)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestStartDiscovery_Success(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.result = &search.ExecutionResult{
		Candidates: []domain.Candidate{
			{ID: uuid.New(), OrganizationName: "Education Fund"},
		},
		Statistics: domain.SessionStatistics{TotalResultsFound: 5},
	}

	w := env.do(t, http.MethodPost, "/api/v1/discovery/search", SearchRequest{
		KeywordQuery: "education grants bulgaria",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.SessionStatusCompleted, resp.Status)
	assert.Equal(t, 1, resp.CandidatesFound)
	assert.Equal(t, 5, resp.Statistics.TotalResultsFound)

	// The session record is created before the search runs.
	_, ok := env.sessions.sessions[resp.SessionID]
	assert.True(t, ok)
	assert.Equal(t, resp.SessionID, env.searcher.gotSessionID)

	// An omitted AI query falls back to the keyword query.
	assert.Equal(t, "education grants bulgaria", env.searcher.gotAIQuery)
	assert.Equal(t, 20, env.searcher.gotMax, "max results defaults to the configured cap")
}

func TestStartDiscovery_MissingQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/discovery/search", gin.H{"max_results": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartDiscovery_AllProvidersFailed(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.err = search.ErrAllProvidersFailed

	w := env.do(t, http.MethodPost, "/api/v1/discovery/search", SearchRequest{
		KeywordQuery: "grants",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "all search providers failed")
}

func TestGetSession(t *testing.T) {
	env := newTestEnv(t)
	session := &domain.DiscoverySession{
		ID:           uuid.New(),
		Status:       domain.SessionStatusCompleted,
		KeywordQuery: "grants",
	}
	env.sessions.sessions[session.ID] = session

	w := env.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.DiscoverySession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, session.ID, got.ID)
}

func TestGetSession_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSession_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlacklistDomain(t *testing.T) {
	env := newTestEnv(t)
	adminID := uuid.New()

	w := env.do(t, http.MethodPost, "/api/v1/domains/spam-grants.xyz/blacklist", BlacklistRequest{
		BlacklistedBy: adminID,
		Reason:        "confirmed spam farm",
	})

	require.Equal(t, http.StatusOK, w.Code)

	d := env.domains.records["spam-grants.xyz"]
	require.NotNil(t, d)
	assert.Equal(t, domain.DomainStatusBlacklisted, d.Status)
	assert.Equal(t, adminID, *d.BlacklistedBy)
}

func TestBlacklistDomain_MissingReason(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/domains/spam.xyz/blacklist", gin.H{
		"blacklisted_by": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkNoFunds_DefaultsToCurrentYear(t *testing.T) {
	env := newTestEnv(t)
	env.domains.records["fund.org"] = &domain.Domain{
		ID: uuid.New(), DomainName: "fund.org", Status: domain.DomainStatusDiscovered,
	}

	w := env.do(t, http.MethodPost, "/api/v1/domains/fund.org/no-funds", gin.H{})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Now().UTC().Year(), env.domains.gotYear)
	assert.Equal(t, domain.DomainStatusNoFundsThisYear, env.domains.records["fund.org"].Status)
}

func TestMarkNoFunds_UnknownDomain(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/domains/nobody.org/no-funds", gin.H{"year": 2026})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDomains_FiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.domains.records["good.org"] = &domain.Domain{
		DomainName: "good.org", Status: domain.DomainStatusProcessedHighQuality,
	}
	env.domains.records["bad.xyz"] = &domain.Domain{
		DomainName: "bad.xyz", Status: domain.DomainStatusBlacklisted,
	}

	w := env.do(t, http.MethodGet, "/api/v1/domains?status=BLACKLISTED", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DomainsListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "bad.xyz", resp.Domains[0].DomainName)
}

func TestListRetryReady(t *testing.T) {
	env := newTestEnv(t)
	env.domains.retryReady = []domain.Domain{
		{DomainName: "flaky.org", Status: domain.DomainStatusProcessingFailed},
	}

	w := env.do(t, http.MethodGet, "/api/v1/domains/retry-ready", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DomainsListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "flaky.org", resp.Domains[0].DomainName)
}

func TestUpdateCandidateStatus(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	env.candidates.candidates[id] = &domain.Candidate{
		ID: id, Status: domain.CandidateStatusPendingReview,
	}

	w := env.do(t, http.MethodPost, "/api/v1/candidates/"+id.String()+"/status",
		UpdateCandidateStatusRequest{Status: domain.CandidateStatusApproved})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.CandidateStatusApproved, env.candidates.candidates[id].Status)
}

func TestUpdateCandidateStatus_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/candidates/"+uuid.NewString()+"/status",
		gin.H{"status": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCandidateStatus_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/candidates/"+uuid.NewString()+"/status",
		UpdateCandidateStatusRequest{Status: domain.CandidateStatusRejected})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
