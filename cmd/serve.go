package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/internal/server"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the DevInsight HTTP API",
	Long: `Launch an HTTP server that analyzes one repository at a time.

POST /analyze selects a repository, either by repo_path or by uploading a zip
archive as the file field. The metric endpoints then report on that repository:

  GET /churn-metrics       ?page=&limit=&ext=
  GET /complexity-metrics  ?page=&limit=&ext=
  GET /hotspots            ?page=&limit=&ext=&churn_threshold=&complexity_threshold=&top_n=

Examples:
  devinsight serve --addr :8000 --log-level debug`,
	Args:    cobra.NoArgs,
	PreRunE: recordSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServer(rootCtx, cfg)
	},
}

// runServer serves until the process receives an interrupt or the server fails.
func runServer(ctx context.Context, cfg *contract.Config) error {
	logger := server.NewLogger(cfg.LogLevel)

	deps, err := core.NewDeps(cfg, contract.NewLocalGitClient())
	if err != nil {
		return err
	}
	srv := server.NewServer(cfg, deps, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
