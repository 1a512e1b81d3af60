package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/northstar-funding/discovery/internal/config"
)

// migrationsPath is the relative path to the migrations directory.
const migrationsPath = "file://migrations"

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down>",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := migrate.New(migrationsPath, buildMigrateURL(cfg.Database))
		if err != nil {
			return fmt.Errorf("create migrate instance: %w", err)
		}
		defer func() { _, _ = m.Close() }()

		switch args[0] {
		case "up":
			err = m.Up()
		case "down":
			err = m.Down()
		default:
			return fmt.Errorf("invalid direction %q (must be up or down)", args[0])
		}

		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration %s failed: %w", args[0], err)
		}

		fmt.Printf("Migration %s completed successfully\n", args[0])
		return nil
	},
}

func buildMigrateURL(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(db.User), url.QueryEscape(db.Password),
		db.Host, db.Port, db.Database, db.SSLMode)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
