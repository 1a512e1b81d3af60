package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/northstar-funding/discovery/internal/domain"
)

// ErrCandidateNotFound is returned when no candidate matches the ID.
var ErrCandidateNotFound = errors.New("candidate not found")

const candidateColumns = `
	candidate_id, status, organization_name, description, source_url,
	domain_id, discovery_session_id, confidence_score, created_at`

// CandidateRepository persists funding source candidates.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository creates a new candidate repository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create inserts a new candidate record.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES (
			:candidate_id, :status, :organization_name, :description, :source_url,
			:domain_id, :discovery_session_id, :confidence_score, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("failed to create candidate for %q: %w", c.SourceURL, err)
	}

	return nil
}

// GetByID retrieves a candidate by ID.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE candidate_id = $1`

	var c domain.Candidate
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}

	return &c, nil
}

// ListByStatus returns candidates in the given review state, newest first.
func (r *CandidateRepository) ListByStatus(ctx context.Context, status domain.CandidateStatus, limit int) ([]domain.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var candidates []domain.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, status, limit); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, nil
}

// UpdateStatus moves a candidate to a new review state.
func (r *CandidateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CandidateStatus) error {
	query := `UPDATE candidates SET status = $2 WHERE candidate_id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update candidate %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCandidateNotFound
	}

	return nil
}
