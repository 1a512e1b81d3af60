package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/northstar-funding/discovery/internal/bootstrap"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/search"
)

var (
	discoverKeywordQuery string
	discoverAIQuery      string
	discoverMaxResults   int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery session from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := bootstrap.NewPipeline(cfg, log)
		if err != nil {
			return err
		}
		defer pipeline.Close()

		aiQuery := discoverAIQuery
		if aiQuery == "" {
			aiQuery = discoverKeywordQuery
		}
		maxResults := discoverMaxResults
		if maxResults <= 0 {
			maxResults = cfg.Service.MaxResults
		}

		session := &domain.DiscoverySession{
			ID:               uuid.New(),
			Status:           domain.SessionStatusRunning,
			KeywordQuery:     discoverKeywordQuery,
			AIOptimizedQuery: aiQuery,
			StartedAt:        time.Now().UTC(),
		}
		if err := pipeline.Database.Sessions.Create(cmd.Context(), session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		result, err := pipeline.Orchestrator.ExecuteMultiProviderSearch(
			cmd.Context(), discoverKeywordQuery, aiQuery, maxResults, session.ID)
		if err != nil {
			if errors.Is(err, search.ErrAllProvidersFailed) {
				return fmt.Errorf("session %s failed: %w", session.ID, err)
			}
			return err
		}

		printSessionReport(session.ID, result)
		return nil
	},
}

func printSessionReport(sessionID uuid.UUID, result *search.ExecutionResult) {
	stats := result.Statistics

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Session %s", sessionID)
	t.AppendRows([]table.Row{
		{"Results kept", stats.TotalResultsFound},
		{"Results filtered", stats.SpamResultsFiltered},
		{"Duplicates skipped", stats.DuplicateDomainsSkipped},
		{"New domains", stats.NewDomainsDiscovered},
		{"Candidates", len(result.Candidates)},
	})
	for id, n := range stats.ResultsByProvider {
		t.AppendRow(table.Row{fmt.Sprintf("Results from %s", id), n})
	}
	t.Render()

	if len(result.Candidates) > 0 {
		ct := table.NewWriter()
		ct.SetOutputMirror(os.Stdout)
		ct.AppendHeader(table.Row{"Organization", "Score", "URL"})
		for _, c := range result.Candidates {
			ct.AppendRow(table.Row{c.OrganizationName, c.ConfidenceScore.String(), c.SourceURL})
		}
		ct.Render()
	}

	for _, e := range result.Errors {
		fmt.Printf("provider %s failed (%s): %s\n", e.Provider, e.ErrorType, e.Message)
	}
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverKeywordQuery, "query", "q", "", "keyword query")
	discoverCmd.Flags().StringVar(&discoverAIQuery, "ai-query", "", "AI-optimized query (defaults to the keyword query)")
	discoverCmd.Flags().IntVarP(&discoverMaxResults, "max-results", "n", 0, "max results per provider")
	_ = discoverCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(discoverCmd)
}
