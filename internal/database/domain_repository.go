package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/registry"
)

const uniqueViolation = pq.ErrorCode("23505")

const domainColumns = `
	domain_id, domain_name, status,
	discovered_at, discovery_session_id, last_processed_at, processing_count,
	best_confidence_score, high_quality_candidate_count, low_quality_candidate_count,
	blacklisted_by, blacklisted_at, blacklist_reason,
	no_funds_year, failure_count, failure_reason, retry_after`

// DomainRepository is the PostgreSQL-backed domain registry store.
type DomainRepository struct {
	db *sqlx.DB
}

// NewDomainRepository creates a new domain repository.
func NewDomainRepository(db *sqlx.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

// FindByName retrieves a domain record by its registrable name.
func (r *DomainRepository) FindByName(ctx context.Context, name string) (*domain.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE domain_name = $1`

	var d domain.Domain
	if err := r.db.GetContext(ctx, &d, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registry.ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to find domain %q: %w", name, err)
	}

	return &d, nil
}

// Create inserts a new domain record. When a concurrent session already
// inserted the same name, the existing record is returned instead.
func (r *DomainRepository) Create(ctx context.Context, d *domain.Domain) (*domain.Domain, error) {
	query := `
		INSERT INTO domains (` + domainColumns + `)
		VALUES (
			:domain_id, :domain_name, :status,
			:discovered_at, :discovery_session_id, :last_processed_at, :processing_count,
			:best_confidence_score, :high_quality_candidate_count, :low_quality_candidate_count,
			:blacklisted_by, :blacklisted_at, :blacklist_reason,
			:no_funds_year, :failure_count, :failure_reason, :retry_after
		)`

	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return r.FindByName(ctx, d.DomainName)
		}
		return nil, fmt.Errorf("failed to create domain %q: %w", d.DomainName, err)
	}

	return d, nil
}

// Update persists all mutable fields of an existing domain record.
func (r *DomainRepository) Update(ctx context.Context, d *domain.Domain) error {
	query := `
		UPDATE domains SET
			status = :status,
			last_processed_at = :last_processed_at,
			processing_count = :processing_count,
			best_confidence_score = :best_confidence_score,
			high_quality_candidate_count = :high_quality_candidate_count,
			low_quality_candidate_count = :low_quality_candidate_count,
			blacklisted_by = :blacklisted_by,
			blacklisted_at = :blacklisted_at,
			blacklist_reason = :blacklist_reason,
			no_funds_year = :no_funds_year,
			failure_count = :failure_count,
			failure_reason = :failure_reason,
			retry_after = :retry_after
		WHERE domain_id = :domain_id`

	result, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return fmt.Errorf("failed to update domain %q: %w", d.DomainName, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return registry.ErrDomainNotFound
	}

	return nil
}

// FindReadyForRetry returns failed domains whose retry backoff has elapsed.
func (r *DomainRepository) FindReadyForRetry(ctx context.Context, now time.Time) ([]domain.Domain, error) {
	query := `
		SELECT ` + domainColumns + `
		FROM domains
		WHERE status = $1 AND retry_after IS NOT NULL AND retry_after <= $2
		ORDER BY retry_after ASC`

	var domains []domain.Domain
	if err := r.db.SelectContext(ctx, &domains, query, domain.DomainStatusProcessingFailed, now); err != nil {
		return nil, fmt.Errorf("failed to find retry-ready domains: %w", err)
	}

	return domains, nil
}

// List returns domain records, optionally filtered by status, newest first.
func (r *DomainRepository) List(ctx context.Context, status domain.DomainStatus, limit int) ([]domain.Domain, error) {
	var (
		query string
		args  []any
	)

	if status == "" {
		query = `SELECT ` + domainColumns + ` FROM domains ORDER BY discovered_at DESC LIMIT $1`
		args = []any{limit}
	} else {
		query = `SELECT ` + domainColumns + ` FROM domains WHERE status = $1 ORDER BY discovered_at DESC LIMIT $2`
		args = []any{status, limit}
	}

	var domains []domain.Domain
	if err := r.db.SelectContext(ctx, &domains, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	return domains, nil
}
