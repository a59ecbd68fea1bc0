package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	fileAdapter "github.com/aretw0/rescuegrid/internal/adapters/file"
	redisAdapter "github.com/aretw0/rescuegrid/internal/adapters/redis"
	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/pkg/adapters/memory"
	"github.com/aretw0/rescuegrid/pkg/persistence/middleware"
	"github.com/aretw0/rescuegrid/pkg/ports"
)

// NewLogger builds the application logger from the log section.
// With debug set the level is forced to debug.
func NewLogger(w io.Writer, cfg config.LogConfig, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithFormat(w, cfg.Format, level)
}

// OpenStore creates the scenario store selected by cfg, wrapped with
// validation and logging. The returned close func releases backend
// connections and is never nil.
func OpenStore(cfg config.StoreConfig, logger *slog.Logger) (ports.ScenarioStore, func() error, error) {
	store, closeStore, err := openBackend(cfg, logger)
	if err != nil {
		return nil, closeStore, err
	}
	return middleware.Chain(store,
		middleware.NewLoggingMiddleware(logger),
		middleware.NewValidationMiddleware(),
	), closeStore, nil
}

func openBackend(cfg config.StoreConfig, logger *slog.Logger) (ports.ScenarioStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Debug("using memory scenario store")
		return memory.NewStore(), noop, nil

	case config.BackendFile:
		logger.Debug("using file scenario store", "path", cfg.Path)
		return fileAdapter.New(cfg.Path), noop, nil

	case config.BackendRedis:
		var opts []redisAdapter.Option
		if cfg.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redisAdapter.WithTTL(cfg.TTL))
		}
		store := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		logger.Debug("using redis scenario store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store, store.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
