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

// Serper proxies Google search results: keyword-style queries over POST with
// an X-API-KEY header.
type Serper struct {
	*client
}

// NewSerper builds the Serper adapter.
func NewSerper(cfg config.ProviderConfig, log logger.Logger) *Serper {
	return &Serper{client: newClient(cfg, domain.ProviderSerper, log)}
}

// ID implements search.Provider.
func (s *Serper) ID() domain.ProviderID { return domain.ProviderSerper }

// SupportsKeywordQueries implements search.Provider.
func (s *Serper) SupportsKeywordQueries() bool { return true }

// SupportsAIOptimizedQueries implements search.Provider.
func (s *Serper) SupportsAIOptimizedQueries() bool { return false }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

// Search implements search.Provider.
func (s *Serper) Search(ctx context.Context, query string, maxResults int) ([]domain.RawSearchResult, error) {
	if s.apiKey == "" {
		return nil, errors.New("serper: unauthorized, API key not configured")
	}
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: maxResults})
	if err != nil {
		return nil, fmt.Errorf("serper: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("serper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	var resp serperResponse
	if err := s.doJSON(req, &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	results := make([]domain.RawSearchResult, 0, len(resp.Organic))
	for i, r := range resp.Organic {
		rank := r.Position
		if rank == 0 {
			rank = i + 1
		}
		results = append(results, domain.RawSearchResult{
			URL:          r.Link,
			Domain:       domain.ExtractDomain(r.Link),
			Title:        r.Title,
			Description:  r.Snippet,
			RankPosition: rank,
			Provider:     domain.ProviderSerper,
			DiscoveredAt: now,
		})
	}

	s.log.Debug("serper search completed",
		logger.String("query", query),
		logger.Int("results", len(results)))
	return results, nil
}
