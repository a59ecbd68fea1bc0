package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.ScenarioStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level, and failures
// at warn. A missing scenario is not a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ScenarioStore) ports.ScenarioStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(op, name string, start time.Time, err error) {
	attrs := []any{"op", op, "duration", time.Since(start)}
	if name != "" {
		attrs = append(attrs, "scenario", name)
	}
	if err != nil && !errors.Is(err, domain.ErrScenarioNotFound) {
		m.logger.Warn("scenario store call failed", append(attrs, "err", err)...)
		return
	}
	m.logger.Debug("scenario store call", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, name string, snap *domain.Snapshot) error {
	start := time.Now()
	err := m.next.Save(ctx, name, snap)
	m.log("save", name, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	start := time.Now()
	snap, err := m.next.Load(ctx, name)
	m.log("load", name, start, err)
	return snap, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := m.next.Delete(ctx, name)
	m.log("delete", name, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := m.next.List(ctx)
	m.log("list", "", start, err)
	return names, err
}
