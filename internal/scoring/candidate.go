package scoring

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/northstar-funding/discovery/internal/domain"
)

const unknownOrganization = "Unknown Organization"

// NewCandidate builds a review candidate from a scored search result. Callers
// gate on score.IsHighConfidence() first; this only assembles the record.
func NewCandidate(result *domain.RawSearchResult, domainID uuid.UUID, score domain.Score) *domain.Candidate {
	org, _ := ExtractOrganizationAndProgram(result.Title)

	return &domain.Candidate{
		ID:                 uuid.New(),
		Status:             domain.CandidateStatusPendingReview,
		OrganizationName:   org,
		Description:        result.Description,
		SourceURL:          result.URL,
		DomainID:           domainID,
		DiscoverySessionID: result.SessionID,
		ConfidenceScore:    score,
		CreatedAt:          time.Now().UTC(),
	}
}

// ExtractOrganizationAndProgram guesses organization and program names from a
// result title by splitting on "-" or "|": the last segment is usually the
// organization, the first the program.
//
//	"Bulgaria Education Grant - US-Bulgaria Foundation"
//	  -> org "Bulgaria Foundation", program "Bulgaria Education Grant"
func ExtractOrganizationAndProgram(title string) (org, program string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return unknownOrganization, "Unknown Program"
	}

	parts := strings.FieldsFunc(title, func(r rune) bool {
		return r == '-' || r == '|'
	})
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[len(parts)-1]), strings.TrimSpace(parts[0])
	}

	return unknownOrganization, title
}
