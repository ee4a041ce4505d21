package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindfulflow/mindfulflow/internal/api"
	"github.com/mindfulflow/mindfulflow/internal/infra/observability"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from [api] host and port)")
	serveCmd.Flags().Bool("trace", false, "record request spans at /api/debug/spans")
}

// ─── serve ──────────────────────────────────────────────────────────────────

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve the journal, statistics, tags, achievements and backup endpoints
over HTTP/JSON. Prometheus metrics are exposed at /metrics unless
[metrics] enabled = false.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()
	logger := app.Logger

	srv := api.NewServer(app.Journal, app.Achievements, app.Backup, logger.With("component", "api"))
	srv.SetDefaultRange(app.Config.Stats.DefaultRangeDays)
	srv.SetHealthCheck(app.DB.Ping)
	if app.Config.Metrics.Enabled {
		srv.EnableMetrics()
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		srv.SetTracer(observability.NewTracer(observability.DefaultTracerConfig()))
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = app.Config.API.Addr()
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server starting", "addr", addr, "data", app.DB.Path())
		if listenErr := httpSrv.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve: HTTP server: %w", listenErr)
		}
		close(errCh)
	}()

	select {
	case <-cmd.Context().Done():
		logger.Info("shutting down")
	case startErr := <-errCh:
		return startErr
	}

	const shutdownTimeout = 10 * time.Second
	if err := api.Shutdown(httpSrv, shutdownTimeout); err != nil {
		return fmt.Errorf("serve: graceful shutdown: %w", err)
	}
	return <-errCh
}
