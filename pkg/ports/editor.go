package ports

import (
	"context"

	"github.com/aretw0/rescuegrid/pkg/domain"
)

// LiveEditor is the view of an editing session offered to outer adapters
// (HTTP, terminal). Calls are serialized with in-progress gestures by the
// implementation.
type LiveEditor interface {
	// Snapshot returns a detached copy of the authoritative snapshot.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)

	// Replace swaps the authoritative snapshot wholesale.
	// Returns domain.ErrDimensionMismatch if the grid size differs.
	Replace(ctx context.Context, snap *domain.Snapshot) error
}
