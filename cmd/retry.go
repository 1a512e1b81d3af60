package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/northstar-funding/discovery/internal/bootstrap"
)

var retryCmd = &cobra.Command{
	Use:   "retry-ready",
	Short: "List failed domains whose retry backoff has elapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := bootstrap.NewPipeline(cfg, log)
		if err != nil {
			return err
		}
		defer pipeline.Close()

		domains, err := pipeline.Registry.FindReadyForRetry(cmd.Context(), time.Now().UTC())
		if err != nil {
			return err
		}

		if len(domains) == 0 {
			fmt.Println("No domains ready for retry.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Domain", "Failures", "Last Reason", "Retry After"})
		for _, d := range domains {
			retryAfter := ""
			if d.RetryAfter != nil {
				retryAfter = d.RetryAfter.Format(time.RFC3339)
			}
			t.AppendRow(table.Row{d.DomainName, d.FailureCount, d.FailureReason, retryAfter})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
