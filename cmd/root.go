// Package cmd implements the discovery service CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/northstar-funding/discovery/internal/bootstrap"
	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/logger"
)

var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Funding opportunity discovery service",
	Long: `Discovers funding opportunity sources by fanning keyword and
AI-optimized queries out to multiple search providers, filtering spam,
scoring result credibility and curating review candidates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = bootstrap.LoadConfig()
		if err != nil {
			return err
		}
		log, err = bootstrap.CreateLogger(cfg)
		if err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
