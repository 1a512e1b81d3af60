package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/northstar-funding/discovery/internal/domain"
)

// ErrSessionNotFound is returned when no discovery session matches the ID.
var ErrSessionNotFound = errors.New("discovery session not found")

const sessionColumns = `
	session_id, status, keyword_query, ai_optimized_query,
	started_at, completed_at, candidates_found, domains_discovered,
	results_filtered, error_message`

// SessionRepository persists discovery session records.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session record in RUNNING state.
func (r *SessionRepository) Create(ctx context.Context, s *domain.DiscoverySession) error {
	query := `
		INSERT INTO discovery_sessions (` + sessionColumns + `)
		VALUES (
			:session_id, :status, :keyword_query, :ai_optimized_query,
			:started_at, :completed_at, :candidates_found, :domains_discovered,
			:results_filtered, :error_message
		)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to create session %s: %w", s.ID, err)
	}

	return nil
}

// Finalize records the terminal status and statistics of a session. Called
// exactly once per session, after aggregation completes or all providers fail.
func (r *SessionRepository) Finalize(ctx context.Context, sessionID uuid.UUID, status domain.SessionStatus,
	stats domain.SessionStatistics, candidatesFound int, errorMessage string) error {
	query := `
		UPDATE discovery_sessions SET
			status = $2,
			completed_at = $3,
			candidates_found = $4,
			domains_discovered = $5,
			results_filtered = $6,
			error_message = $7
		WHERE session_id = $1`

	result, err := r.db.ExecContext(ctx, query, sessionID, status, time.Now().UTC(),
		candidatesFound, stats.NewDomainsDiscovered, stats.SpamResultsFiltered, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to finalize session %s: %w", sessionID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// GetByID retrieves a session record by ID.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.DiscoverySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM discovery_sessions WHERE session_id = $1`

	var s domain.DiscoverySession
	if err := r.db.GetContext(ctx, &s, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	return &s, nil
}
