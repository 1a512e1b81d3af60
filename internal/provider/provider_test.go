package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

func testConfig(name, baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		Name:       name,
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		RatePerSec: 100,
		Burst:      10,
		DailyLimit: 50,
		Enabled:    true,
	}
}

func TestBrave_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "education grants", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]any{
					{"title": "Grants Portal", "url": "https://grants.gov/portal", "description": "Federal grants"},
					{"title": "EU Funding", "url": "https://ec.europa.eu/funding", "description": "EU programmes"},
				},
			},
		})
	}))
	defer srv.Close()

	b := NewBrave(testConfig("brave", srv.URL), logger.NewNop())
	results, err := b.Search(context.Background(), "education grants", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "grants.gov", results[0].Domain)
	assert.Equal(t, 1, results[0].RankPosition)
	assert.Equal(t, 2, results[1].RankPosition)
	assert.Equal(t, domain.ProviderBrave, results[0].Provider)
}

func TestBrave_MissingAPIKey(t *testing.T) {
	cfg := testConfig("brave", "http://unused")
	cfg.APIKey = ""
	b := NewBrave(cfg, logger.NewNop())

	_, err := b.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestBrave_HTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, "unauthorized"},
		{"forbidden", http.StatusForbidden, "unauthorized"},
		{"quota", http.StatusTooManyRequests, "rate limit"},
		{"server error", http.StatusInternalServerError, "unexpected status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			b := NewBrave(testConfig("brave", srv.URL), logger.NewNop())
			_, err := b.Search(context.Background(), "q", 10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSearXNG_TruncatesToMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		results := make([]map[string]any, 0, 5)
		for _, u := range []string{"a.org", "b.org", "c.org", "d.org", "e.org"} {
			results = append(results, map[string]any{
				"title": "Result", "url": "https://" + u, "content": "text",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	s := NewSearXNG(testConfig("searxng", srv.URL), logger.NewNop())
	results, err := s.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSerper_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var body serperRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "scholarships bulgaria", body.Q)
		assert.Equal(t, 5, body.Num)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]any{
				{"title": "Scholarships", "link": "https://www.scholarships.bg/list", "snippet": "List", "position": 3},
			},
		})
	}))
	defer srv.Close()

	s := NewSerper(testConfig("serper", srv.URL), logger.NewNop())
	results, err := s.Search(context.Background(), "scholarships bulgaria", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "scholarships.bg", results[0].Domain, "www prefix is stripped")
	assert.Equal(t, 3, results[0].RankPosition, "provider-reported position wins")
}

func TestTavily_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-key", body.APIKey)
		assert.True(t, body.IncludeAnswer)
		assert.False(t, body.IncludeRawContent)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "Some funding sources exist.",
			"results": []map[string]any{
				{"title": "Fund", "url": "https://fund.eu/apply", "content": "Apply here", "score": 0.91},
			},
		})
	}))
	defer srv.Close()

	tv := NewTavily(testConfig("tavily", srv.URL), logger.NewNop())
	results, err := tv.Search(context.Background(), "find funding", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "fund.eu", results[0].Domain)
	assert.Equal(t, "Apply here", results[0].Description)
}

func TestClient_DailyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	cfg := testConfig("searxng", srv.URL)
	cfg.DailyLimit = 2
	s := NewSearXNG(cfg, logger.NewNop())

	ctx := context.Background()
	_, err := s.Search(ctx, "q", 5)
	require.NoError(t, err)
	_, err = s.Search(ctx, "q", 5)
	require.NoError(t, err)

	_, err = s.Search(ctx, "q", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDailyLimitExceeded)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestClient_DailyWindowResets(t *testing.T) {
	s := NewSearXNG(testConfig("searxng", "http://unused"), logger.NewNop())
	s.dailyLimit = 1

	// Exhaust today's quota, then age the window by a day.
	require.NoError(t, s.acquire(context.Background()))
	require.Error(t, s.acquire(context.Background()))

	s.mu.Lock()
	s.windowDay = s.windowDay.AddDate(0, 0, -1)
	s.mu.Unlock()

	assert.NoError(t, s.acquire(context.Background()))
}

func TestFromConfig_SkipsDisabled(t *testing.T) {
	cfgs := []config.ProviderConfig{
		testConfig("brave", "http://brave"),
		{Name: "serper", BaseURL: "http://serper", Enabled: false},
		testConfig("tavily", "http://tavily"),
	}

	providers, err := FromConfig(cfgs, logger.NewNop())
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, domain.ProviderBrave, providers[0].ID())
	assert.Equal(t, domain.ProviderTavily, providers[1].ID())
}

func TestFromConfig_UnknownProvider(t *testing.T) {
	_, err := FromConfig([]config.ProviderConfig{
		{Name: "altavista", Enabled: true},
	}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown search provider")
}
