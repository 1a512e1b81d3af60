package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/database"
	"github.com/northstar-funding/discovery/internal/logger"
)

// DatabaseComponents holds the database connection and repositories.
type DatabaseComponents struct {
	DB         *sqlx.DB
	Domains    *database.DomainRepository
	Sessions   *database.SessionRepository
	Candidates *database.CandidateRepository
}

// SetupDatabase creates the database connection and repositories.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*DatabaseComponents, error) {
	log.Info("connecting to PostgreSQL database",
		logger.String("host", cfg.Database.Host),
		logger.String("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database))

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected successfully")

	return &DatabaseComponents{
		DB:         db,
		Domains:    database.NewDomainRepository(db),
		Sessions:   database.NewSessionRepository(db),
		Candidates: database.NewCandidateRepository(db),
	}, nil
}
