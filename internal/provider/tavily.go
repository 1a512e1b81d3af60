package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

// Tavily is the research-oriented provider: it takes the AI-optimized
// natural-language query over POST, with the key in the request body.
type Tavily struct {
	*client
}

// NewTavily builds the Tavily adapter.
func NewTavily(cfg config.ProviderConfig, log logger.Logger) *Tavily {
	return &Tavily{client: newClient(cfg, domain.ProviderTavily, log)}
}

// ID implements search.Provider.
func (t *Tavily) ID() domain.ProviderID { return domain.ProviderTavily }

// SupportsKeywordQueries implements search.Provider.
func (t *Tavily) SupportsKeywordQueries() bool { return false }

// SupportsAIOptimizedQueries implements search.Provider.
func (t *Tavily) SupportsAIOptimizedQueries() bool { return true }

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
	Answer string `json:"answer"`
}

// Search implements search.Provider. Metadata only: raw page content is not
// requested at this stage.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]domain.RawSearchResult, error) {
	if t.apiKey == "" {
		return nil, errors.New("tavily: unauthorized, API key not configured")
	}
	if err := t.acquire(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        t.apiKey,
		Query:         query,
		MaxResults:    maxResults,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp tavilyResponse
	if err := t.doJSON(req, &resp); err != nil {
		return nil, err
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
			Provider:     domain.ProviderTavily,
			DiscoveredAt: now,
		})
	}

	t.log.Debug("tavily search completed",
		logger.String("query", query),
		logger.Int("results", len(results)),
		logger.Bool("has_answer", resp.Answer != ""))
	return results, nil
}
