package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/metrics"
	"github.com/aretw0/rescuegrid/internal/session"
	httpAdapter "github.com/aretw0/rescuegrid/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures RunServe.
type ServeOptions struct {
	Config config.Config
	// Scenario, when set, seeds the authoritative snapshot from the store.
	Scenario string
	Version  string
	Logger   *slog.Logger
	// Listener overrides Config.HTTP.Addr.
	Listener net.Listener
}

// RunServe runs the live-visualizer API until ctx is cancelled, then shuts
// the server down gracefully.
func RunServe(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	store, closeStore, err := OpenStore(opts.Config.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hooks := debugHooks(logger)
	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithStore(store),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithVersion(opts.Version),
	}
	if opts.Config.Metrics.Enabled {
		collectors, err := metrics.New(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		hooks = collectors.EditorHooks(hooks)
		handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(collectors.Handler()))
	}

	engine, err := newEngine(ctx, store, opts.Scenario, opts.Config.Grid, logger, hooks)
	if err != nil {
		return err
	}

	streams := httpAdapter.NewStreamManager(logger)
	sess := session.New(engine,
		session.WithStore(store),
		session.WithLogger(logger),
		session.WithListener(streams.BroadcastDiff),
	)
	handlerOpts = append(handlerOpts, httpAdapter.WithStreams(streams))

	sessCtx, stopSession := context.WithCancel(context.Background())
	defer stopSession()
	go func() {
		_ = sess.Run(sessCtx)
	}()

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", opts.Config.HTTP.Addr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.Config.HTTP.Addr, err)
		}
	}

	srv := &http.Server{
		Handler:           httpAdapter.NewHandler(sess, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("rescuegrid server listening", "addr", ln.Addr().String(), "cols", sess.Cols(), "rows", sess.Rows())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Open SSE streams hold Shutdown until the deadline; Close ends them.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}
		logger.Info("server stopped")
		return nil
	}
}
