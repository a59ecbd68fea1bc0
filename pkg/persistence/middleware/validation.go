package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
)

type validationMiddleware struct {
	next ports.ScenarioStore
}

// NewValidationMiddleware rejects invalid scenario names on every call and
// snapshots that break their invariants on Save, before they reach the
// backend. Loaded snapshots are checked too, so a corrupted record surfaces
// as domain.ErrInvalidSnapshot rather than as a malformed grid.
func NewValidationMiddleware() Middleware {
	return func(next ports.ScenarioStore) ports.ScenarioStore {
		return &validationMiddleware{next: next}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, name string, snap *domain.Snapshot) error {
	if err := domain.ValidateScenarioName(name); err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	return m.next.Save(ctx, name, snap)
}

func (m *validationMiddleware) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	if err := domain.ValidateScenarioName(name); err != nil {
		return nil, err
	}
	snap, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("stored scenario %q: %w", name, err)
	}
	return snap, nil
}

func (m *validationMiddleware) Delete(ctx context.Context, name string) error {
	if err := domain.ValidateScenarioName(name); err != nil {
		return err
	}
	return m.next.Delete(ctx, name)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
