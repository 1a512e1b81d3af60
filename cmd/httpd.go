package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/northstar-funding/discovery/internal/bootstrap"
	"github.com/northstar-funding/discovery/internal/logger"
)

var httpdCmd = &cobra.Command{
	Use:   "httpd",
	Short: "Run the discovery HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := bootstrap.NewHTTPComponents(cfg, log)
		if err != nil {
			return err
		}
		defer comps.Pipeline.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- comps.Server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), bootstrap.HTTPShutdownTimeout())
		defer cancel()

		if err := comps.Server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", logger.Error(err))
			return err
		}

		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(httpdCmd)
}
