package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProviderID identifies a configured search provider.
type ProviderID string

const (
	// ProviderBrave is the Brave Search API provider (keyword queries).
	ProviderBrave ProviderID = "brave"
	// ProviderSearXNG is the self-hosted SearXNG metasearch provider (keyword queries).
	ProviderSearXNG ProviderID = "searxng"
	// ProviderSerper is the Serper Google-proxy provider (keyword queries).
	ProviderSerper ProviderID = "serper"
	// ProviderTavily is the Tavily research provider (AI-optimized queries).
	ProviderTavily ProviderID = "tavily"
)

// RawSearchResult is one provider hit before any filtering. Transient: raw
// results are consumed by the aggregation pipeline and never persisted.
type RawSearchResult struct {
	URL          string     `json:"url"`
	Domain       string     `json:"domain"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	RankPosition int        `json:"rank_position"` // 1-based, provider-local
	Provider     ProviderID `json:"provider"`
	SessionID    uuid.UUID  `json:"session_id"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}

// ExtractDomain returns the registrable host of a result URL, lowercased and
// with any "www." prefix stripped. Returns "" when the URL has no usable host.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Bare host without a scheme, e.g. "example.org/grants".
		u, err = url.Parse("https://" + rawURL)
		if err != nil || u.Host == "" {
			return ""
		}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	return host
}
