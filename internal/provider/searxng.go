package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

// SearXNG queries a self-hosted SearXNG metasearch instance: keyword-style
// queries over plain GET with JSON output, no credential.
type SearXNG struct {
	*client
}

// NewSearXNG builds the SearXNG adapter.
func NewSearXNG(cfg config.ProviderConfig, log logger.Logger) *SearXNG {
	return &SearXNG{client: newClient(cfg, domain.ProviderSearXNG, log)}
}

// ID implements search.Provider.
func (s *SearXNG) ID() domain.ProviderID { return domain.ProviderSearXNG }

// SupportsKeywordQueries implements search.Provider.
func (s *SearXNG) SupportsKeywordQueries() bool { return true }

// SupportsAIOptimizedQueries implements search.Provider.
func (s *SearXNG) SupportsAIOptimizedQueries() bool { return false }

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements search.Provider. SearXNG has no per-request result cap,
// so the response is truncated locally.
func (s *SearXNG) Search(ctx context.Context, query string, maxResults int) ([]domain.RawSearchResult, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?q=%s&format=json", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("searxng: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var resp searxngResponse
	if err := s.doJSON(req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Results) > maxResults {
		resp.Results = resp.Results[:maxResults]
	}

	now := time.Now().UTC()
	results := make([]domain.RawSearchResult, 0, len(resp.Results))
	for i, r := range resp.Results {
		results = append(results, domain.RawSearchResult{
			URL:          r.URL,
			Domain:       domain.ExtractDomain(r.URL),
			Title:        r.Title,
			Description:  r.Content,
			RankPosition: i + 1,
			Provider:     domain.ProviderSearXNG,
			DiscoveredAt: now,
		})
	}

	s.log.Debug("searxng search completed",
		logger.String("query", query),
		logger.Int("results", len(results)))
	return results, nil
}
