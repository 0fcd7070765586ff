package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"form-submissions/internal/api"
	"form-submissions/internal/common/config"
)

const shutdownTimeout = 30 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the submission HTTP API",
		Long: `Serve POST /api/submit-form (and POST /api/v1/submissions) together with
/health, /ready and /metrics.

Example:
  form-service serve
  form-service serve --address :8081 --config ./configs/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, address)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (default: http.address)")

	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, address string) error {
	a, err := bootstrap(ctx, opts, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if address == "" {
		address = a.cfg.HTTP.Address
	}

	subH := api.NewSubmissionHandler(a.service, a.obs, a.log)
	healthH := api.NewHealthHandler(a.store)
	router := api.NewRouter(api.Options{AllowedOrigins: a.cfg.HTTP.AllowedOrigins}, a.log, subH, healthH)

	srv := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(a.cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(a.cfg.HTTP.WriteTimeout),
	}

	return listenAndShutdown(ctx, srv, a)
}

// listenAndShutdown serves until ctx is cancelled, then drains in-flight
// requests.
func listenAndShutdown(ctx context.Context, srv *http.Server, a *app) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received, draining http server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http server shutdown failed", map[string]interface{}{"error": err})
		return err
	}
	a.log.Info("http server stopped", nil)
	return nil
}
