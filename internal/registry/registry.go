// Package registry maintains the persistent per-domain state machine:
// cross-session deduplication, blacklist, quality counters and retry backoff.
package registry

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
)

// ErrDomainNotFound is returned when an operation targets an unknown domain.
var ErrDomainNotFound = errors.New("domain not found")

// lockStripes is the number of per-domain mutex stripes. Power of two.
const lockStripes = 64

// DomainStore is the persistence boundary for domain records.
type DomainStore interface {
	FindByName(ctx context.Context, name string) (*domain.Domain, error)
	Create(ctx context.Context, d *domain.Domain) (*domain.Domain, error)
	Update(ctx context.Context, d *domain.Domain) error
	FindReadyForRetry(ctx context.Context, now time.Time) ([]domain.Domain, error)
}

// Registry coordinates all domain-record mutations. Read-modify-write
// sequences for one domain name serialize on a striped per-key mutex so
// concurrent aggregation batches cannot lose counter updates.
type Registry struct {
	store DomainStore
	log   logger.Logger
	locks [lockStripes]sync.Mutex
	now   func() time.Time
}

// New creates a Registry backed by the given store.
func New(store DomainStore, log logger.Logger) *Registry {
	return &Registry{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Register gets or creates the record for a domain name. An existing record
// is returned unchanged: registration never overwrites status or counters.
func (r *Registry) Register(ctx context.Context, name string, sessionID uuid.UUID) (*domain.Domain, error) {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.store.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrDomainNotFound) {
		return nil, fmt.Errorf("lookup domain %q: %w", name, err)
	}

	created, err := r.store.Create(ctx, &domain.Domain{
		ID:                 uuid.New(),
		DomainName:         name,
		Status:             domain.DomainStatusDiscovered,
		DiscoveredAt:       r.now().UTC(),
		DiscoverySessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("create domain %q: %w", name, err)
	}

	r.log.Info("registered new domain",
		logger.String("domain", name),
		logger.String("session_id", sessionID.String()))
	return created, nil
}

// ShouldProcess reports whether results for a domain may enter the pipeline.
// Blacklisted domains are rejected indefinitely. Domains marked as having no
// funds are rejected only within the marked year; unknown domains are allowed.
func (r *Registry) ShouldProcess(ctx context.Context, name string) (bool, error) {
	d, err := r.store.FindByName(ctx, name)
	if errors.Is(err, ErrDomainNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup domain %q: %w", name, err)
	}

	switch d.Status {
	case domain.DomainStatusBlacklisted:
		return false, nil
	case domain.DomainStatusNoFundsThisYear:
		if d.NoFundsYear != nil && *d.NoFundsYear == r.now().UTC().Year() {
			return false, nil
		}
		return true, nil
	default:
		return true, nil
	}
}

// UpdateCandidateCounts applies one batch of quality observations to a
// domain: counters are incremented, the best confidence score keeps its
// running maximum and the status moves to PROCESSED_HIGH_QUALITY when the
// domain has any high-quality hit, else PROCESSED_LOW_QUALITY when it has
// any low-quality hit. Blacklisted domains keep their status.
func (r *Registry) UpdateCandidateCounts(ctx context.Context, name string, highDelta, lowDelta int, observed domain.Score) error {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	d, err := r.store.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("lookup domain %q: %w", name, err)
	}

	d.HighQualityCandidateCount += highDelta
	d.LowQualityCandidateCount += lowDelta

	if d.BestConfidenceScore == nil || observed > *d.BestConfidenceScore {
		score := observed
		d.BestConfidenceScore = &score
	}

	now := r.now().UTC()
	d.LastProcessedAt = &now
	d.ProcessingCount++

	if d.Status != domain.DomainStatusBlacklisted {
		switch {
		case d.HighQualityCandidateCount > 0:
			d.Status = domain.DomainStatusProcessedHighQuality
		case d.LowQualityCandidateCount > 0:
			d.Status = domain.DomainStatusProcessedLowQuality
		}
	}

	if err := r.store.Update(ctx, d); err != nil {
		return fmt.Errorf("update domain %q: %w", name, err)
	}

	r.log.Debug("updated domain quality",
		logger.String("domain", name),
		logger.Int("high_count", d.HighQualityCandidateCount),
		logger.Int("low_count", d.LowQualityCandidateCount),
		logger.String("status", string(d.Status)))
	return nil
}

// Blacklist permanently excludes a domain from processing, recording who did
// it and why. Creates the record when the domain was never seen before.
func (r *Registry) Blacklist(ctx context.Context, name string, actorID uuid.UUID, reason string) (*domain.Domain, error) {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	d, err := r.store.FindByName(ctx, name)
	if errors.Is(err, ErrDomainNotFound) {
		d, err = r.store.Create(ctx, &domain.Domain{
			ID:           uuid.New(),
			DomainName:   name,
			Status:       domain.DomainStatusBlacklisted,
			DiscoveredAt: r.now().UTC(),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("blacklist domain %q: %w", name, err)
	}

	now := r.now().UTC()
	d.Status = domain.DomainStatusBlacklisted
	d.BlacklistedBy = &actorID
	d.BlacklistedAt = &now
	d.BlacklistReason = reason

	if err := r.store.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("blacklist domain %q: %w", name, err)
	}

	r.log.Warn("domain blacklisted",
		logger.String("domain", name),
		logger.String("actor", actorID.String()),
		logger.String("reason", reason))
	return d, nil
}

// MarkNoFundsThisYear records that a legitimate funder has no funds available
// for the given year. The domain becomes eligible again once the year passes.
func (r *Registry) MarkNoFundsThisYear(ctx context.Context, name string, year int) (*domain.Domain, error) {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	d, err := r.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup domain %q: %w", name, err)
	}

	d.Status = domain.DomainStatusNoFundsThisYear
	d.NoFundsYear = &year

	if err := r.store.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update domain %q: %w", name, err)
	}

	r.log.Info("domain marked no funds",
		logger.String("domain", name),
		logger.Int("year", year))
	return d, nil
}

// RecordProcessingFailure increments the failure count and schedules the next
// retry with escalating backoff: 1 hour, 4 hours, 1 day, then 1 week.
func (r *Registry) RecordProcessingFailure(ctx context.Context, name, reason string) error {
	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	d, err := r.store.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("lookup domain %q: %w", name, err)
	}

	d.FailureCount++
	d.FailureReason = reason
	d.Status = domain.DomainStatusProcessingFailed

	retryAfter := r.now().UTC().Add(backoffDelay(d.FailureCount))
	d.RetryAfter = &retryAfter

	if err := r.store.Update(ctx, d); err != nil {
		return fmt.Errorf("update domain %q: %w", name, err)
	}

	r.log.Warn("domain processing failed",
		logger.String("domain", name),
		logger.Int("failures", d.FailureCount),
		logger.String("reason", reason),
		logger.Time("retry_after", retryAfter))
	return nil
}

// FindReadyForRetry lists failed domains whose backoff has elapsed at the
// given instant.
func (r *Registry) FindReadyForRetry(ctx context.Context, now time.Time) ([]domain.Domain, error) {
	domains, err := r.store.FindReadyForRetry(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find domains ready for retry: %w", err)
	}
	return domains, nil
}

// Get returns the record for a domain name.
func (r *Registry) Get(ctx context.Context, name string) (*domain.Domain, error) {
	return r.store.FindByName(ctx, name)
}

func backoffDelay(failureCount int) time.Duration {
	switch failureCount {
	case 1:
		return time.Hour
	case 2:
		return 4 * time.Hour
	case 3:
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

func (r *Registry) lockFor(name string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(name))
	return &r.locks[h.Sum32()%lockStripes]
}
