// Package scoring computes confidence scores for filtered search results and
// turns high-confidence results into review candidates.
package scoring

import (
	"net/url"
	"strings"

	"github.com/northstar-funding/discovery/internal/domain"
)

// Five-tier TLD credibility table. Values are score hundredths added to (or
// subtracted from) the base confidence.
var (
	// Tier 1: validated nonprofits, government, education.
	tier1TLDs = map[string]domain.Score{
		"ngo":        20,
		"ong":        20,
		"foundation": 20,
		"charity":    20,
		"gov":        20,
		"edu":        20,
	}

	// Tier 1 second-level domains, checked before the final TLD.
	tier1SecondLevel = map[string]struct{}{
		"gov.bg": {}, "gov.ro": {}, "gov.pl": {}, "gov.cz": {}, "gov.de": {}, "gov.fr": {},
		"edu.bg": {}, "edu.ro": {}, "edu.pl": {}, "edu.cz": {},
		"ac.bg": {}, "ac.ro": {}, "ac.pl": {}, "ac.cz": {},
		"europa.eu": {},
	}

	// Tier 2: traditional nonprofits, EU domains, target-region ccTLDs.
	tier2TLDs = map[string]domain.Score{
		"org": 15,
		"eu":  15, "ею": 15,
		"bg": 15, "бг": 15,
		"ro": 15, "pl": 15, "cz": 15, "de": 15, "fr": 15,
		"gr": 15, "hu": 15, "at": 15, "it": 15, "es": 15,
		"fund": 15, "gives": 15,
	}

	// Tier 3: generic business TLDs.
	tier3TLDs = map[string]domain.Score{
		"com": 8, "net": 8, "info": 8, "education": 8,
	}

	// Tier 4: cheap/unrestricted TLDs, neutral.
	tier4TLDs = map[string]domain.Score{
		"biz": 0, "co": 0, "io": 0, "me": 0,
	}

	// Tier 5: spam and phishing TLDs, negative.
	tier5TLDs = map[string]domain.Score{
		"tk": -30, "ml": -30, "ga": -30, "cf": -30, "gq": -30,
		"xyz": -20, "top": -20, "icu": -20, "buzz": -20,
		"loan":  -25,
		"click": -15, "cam": -15, "pw": -15,
		"shop": -10,
	}
)

// TLDScore returns the credibility contribution for the URL's TLD, in score
// hundredths. Unknown or unparsable TLDs contribute zero.
func TLDScore(rawURL string) domain.Score {
	tld := extractTLD(rawURL)
	if tld == "" {
		return 0
	}

	if _, ok := tier1SecondLevel[tld]; ok {
		return 20
	}

	finalTLD := tld
	if idx := strings.LastIndex(tld, "."); idx >= 0 {
		finalTLD = tld[idx+1:]
	}

	for _, tier := range []map[string]domain.Score{
		tier1TLDs, tier2TLDs, tier3TLDs, tier4TLDs, tier5TLDs,
	} {
		if score, ok := tier[finalTLD]; ok {
			return score
		}
	}
	return 0
}

// IsSpamTLD reports whether the URL uses a Tier 5 TLD.
func IsSpamTLD(rawURL string) bool {
	tld := extractTLD(rawURL)
	if tld == "" {
		return false
	}
	if idx := strings.LastIndex(tld, "."); idx >= 0 {
		tld = tld[idx+1:]
	}
	_, ok := tier5TLDs[tld]
	return ok
}

// extractTLD returns the URL's TLD, preferring known second-level domains
// ("ministry.gov.bg" -> "gov.bg", "example.org" -> "org"). Handles bare hosts
// and IDN hosts that net/url rejects.
func extractTLD(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return ""
	}

	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}

	secondLevel := parts[len(parts)-2] + "." + parts[len(parts)-1]
	if _, ok := tier1SecondLevel[secondLevel]; ok {
		return secondLevel
	}
	return parts[len(parts)-1]
}

func hostOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}

	// Manual fallback for bare hosts and IDN domains.
	host := rawURL
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	for _, sep := range []byte{'/', '?', ':'} {
		if idx := strings.IndexByte(host, sep); idx >= 0 {
			host = host[:idx]
		}
	}
	if host == "" {
		return ""
	}
	return strings.ToLower(host)
}
