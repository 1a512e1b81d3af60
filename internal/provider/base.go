// Package provider implements the search provider adapters (Brave, SearXNG,
// Serper, Tavily). Each adapter rate-limits and time-bounds itself so the
// orchestrator can treat all providers through one contract.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
	"github.com/northstar-funding/discovery/internal/search"
)

// ErrDailyLimitExceeded is returned when a provider's daily quota is spent.
// The message carries "rate limit" so error classification tags it RATE_LIMIT.
var ErrDailyLimitExceeded = errors.New("rate limit: daily quota exceeded")

// maxResponseBytes bounds provider response bodies.
const maxResponseBytes = 4 << 20

// client carries the shared per-provider plumbing: HTTP transport with the
// provider's timeout, a token-bucket limiter and a daily usage counter that
// resets at UTC midnight.
type client struct {
	id         domain.ProviderID
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	dailyLimit int
	log        logger.Logger

	mu        sync.Mutex
	usedToday int
	windowDay time.Time
}

func newClient(cfg config.ProviderConfig, id domain.ProviderID, log logger.Logger) *client {
	return &client{
		id:      id,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		dailyLimit: cfg.DailyLimit,
		log:        log,
	}
}

// acquire consumes one unit of quota, blocking on the token bucket and
// enforcing the daily cap. The daily window resets at UTC midnight.
func (c *client) acquire(ctx context.Context) error {
	c.mu.Lock()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !c.windowDay.Equal(today) {
		c.windowDay = today
		c.usedToday = 0
	}
	if c.dailyLimit > 0 && c.usedToday >= c.dailyLimit {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d requests used", ErrDailyLimitExceeded, c.dailyLimit)
	}
	c.usedToday++
	c.mu.Unlock()

	return c.limiter.Wait(ctx)
}

// doJSON executes the request and decodes a 200 response into out. Auth and
// quota statuses map to messages the error classifier recognizes.
func (c *client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", c.id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: unauthorized (status %d)", c.id, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: rate limit exceeded (status 429)", c.id)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: unexpected status %d", c.id, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.id, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.id, err)
	}
	return nil
}

// New builds the adapter for a provider config entry.
func New(cfg config.ProviderConfig, log logger.Logger) (search.Provider, error) {
	switch domain.ProviderID(cfg.Name) {
	case domain.ProviderBrave:
		return NewBrave(cfg, log), nil
	case domain.ProviderSearXNG:
		return NewSearXNG(cfg, log), nil
	case domain.ProviderSerper:
		return NewSerper(cfg, log), nil
	case domain.ProviderTavily:
		return NewTavily(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Name)
	}
}

// FromConfig builds adapters for every enabled provider, in config order.
func FromConfig(cfgs []config.ProviderConfig, log logger.Logger) ([]search.Provider, error) {
	providers := make([]search.Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		p, err := New(cfg, log)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
