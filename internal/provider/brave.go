package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

// Brave queries the Brave Web Search API. Independent index, keyword-style
// queries, GET with a subscription-token header.
type Brave struct {
	*client
}

// NewBrave builds the Brave adapter.
func NewBrave(cfg config.ProviderConfig, log logger.Logger) *Brave {
	return &Brave{client: newClient(cfg, domain.ProviderBrave, log)}
}

// ID implements search.Provider.
func (b *Brave) ID() domain.ProviderID { return domain.ProviderBrave }

// SupportsKeywordQueries implements search.Provider.
func (b *Brave) SupportsKeywordQueries() bool { return true }

// SupportsAIOptimizedQueries implements search.Provider.
func (b *Brave) SupportsAIOptimizedQueries() bool { return false }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements search.Provider.
func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]domain.RawSearchResult, error) {
	if b.apiKey == "" {
		return nil, errors.New("brave: unauthorized, API key not configured")
	}
	if err := b.acquire(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?q=%s&count=%d", b.baseURL, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("brave: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	var resp braveResponse
	if err := b.doJSON(req, &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	results := make([]domain.RawSearchResult, 0, len(resp.Web.Results))
	for i, r := range resp.Web.Results {
		results = append(results, domain.RawSearchResult{
			URL:          r.URL,
			Domain:       domain.ExtractDomain(r.URL),
			Title:        r.Title,
			Description:  r.Description,
			RankPosition: i + 1,
			Provider:     domain.ProviderBrave,
			DiscoveredAt: now,
		})
	}

	b.log.Debug("brave search completed",
		logger.String("query", query),
		logger.Int("results", len(results)))
	return results, nil
}
