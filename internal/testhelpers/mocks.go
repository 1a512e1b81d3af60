// Package testhelpers provides shared test utilities for the discovery
// service.
package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/registry"
)

// MemoryDomainStore is an in-memory registry.DomainStore. Records are cloned
// on every read and write so callers cannot mutate stored state by accident.
type MemoryDomainStore struct {
	mu      sync.Mutex
	domains map[string]*domain.Domain
}

// NewMemoryDomainStore creates an empty in-memory store.
func NewMemoryDomainStore() *MemoryDomainStore {
	return &MemoryDomainStore{domains: make(map[string]*domain.Domain)}
}

// FindByName retrieves a domain by name.
func (s *MemoryDomainStore) FindByName(_ context.Context, name string) (*domain.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[name]
	if !ok {
		return nil, registry.ErrDomainNotFound
	}
	clone := *d
	return &clone, nil
}

// Create stores a new domain record.
func (s *MemoryDomainStore) Create(_ context.Context, d *domain.Domain) (*domain.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.domains[d.DomainName]; ok {
		clone := *existing
		return &clone, nil
	}
	clone := *d
	s.domains[d.DomainName] = &clone
	result := clone
	return &result, nil
}

// Update replaces an existing domain record.
func (s *MemoryDomainStore) Update(_ context.Context, d *domain.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[d.DomainName]; !ok {
		return registry.ErrDomainNotFound
	}
	clone := *d
	s.domains[d.DomainName] = &clone
	return nil
}

// FindReadyForRetry returns failed domains whose backoff elapsed by now.
func (s *MemoryDomainStore) FindReadyForRetry(_ context.Context, now time.Time) ([]domain.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ready []domain.Domain
	for _, d := range s.domains {
		if d.Status == domain.DomainStatusProcessingFailed &&
			d.RetryAfter != nil && !d.RetryAfter.After(now) {
			ready = append(ready, *d)
		}
	}
	return ready, nil
}

// Len reports the number of stored records.
func (s *MemoryDomainStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.domains)
}
