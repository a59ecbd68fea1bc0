package ports

import (
	"context"

	"github.com/aretw0/rescuegrid/pkg/domain"
)

// ScenarioStore defines the interface for persisting hand-authored scenarios.
// Implementations must isolate callers from each other: a saved snapshot is
// copied, and a loaded snapshot is never an alias of stored data.
type ScenarioStore interface {
	// Save persists the snapshot under the given scenario name, replacing any previous one.
	Save(ctx context.Context, name string, snap *domain.Snapshot) error

	// Load retrieves the snapshot stored under name.
	// Returns domain.ErrScenarioNotFound if the scenario does not exist.
	Load(ctx context.Context, name string) (*domain.Snapshot, error)

	// Delete removes the scenario. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored scenario names.
	List(ctx context.Context) ([]string, error)
}
