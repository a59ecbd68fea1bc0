package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunScenarioStoreContract runs a suite of tests to verify that a ScenarioStore
// implementation adheres to the defined interface contract.
func RunScenarioStoreContract(t *testing.T, store ScenarioStore) {
	ctx := context.Background()
	name := "contract-test-scenario-" + time.Now().Format("20060102150405")

	sample := func() *domain.Snapshot {
		s := domain.NewSnapshot(5, 4)
		_ = s.SetCell(domain.C(1, 1), domain.Fire)
		_ = s.SetCell(domain.C(2, 3), domain.FirstResponder)
		_ = s.SetCell(domain.C(4, 0), domain.SurvivorInNeed)
		_ = s.SetDrone(domain.C(1, 1), true)
		s.FirstResponders = []domain.Coord{domain.C(2, 3)}
		s.Survivors = []domain.Coord{domain.C(4, 0)}
		return s
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := sample()

		err := store.Save(ctx, name, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, snap.Equal(loaded), "loaded snapshot should equal saved one")
		assert.Equal(t, 5, loaded.Cols())
		assert.Equal(t, 4, loaded.Rows())
	})

	t.Run("Isolation", func(t *testing.T) {
		snap := sample()
		require.NoError(t, store.Save(ctx, name, snap))

		// Mutating the caller's copy after Save must not leak into the store.
		_ = snap.SetCell(domain.C(0, 0), domain.Exit)

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.Empty, loaded.Cell(domain.C(0, 0)))

		// Mutating a loaded copy must not leak either.
		_ = loaded.SetCell(domain.C(0, 0), domain.Exit)
		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.Empty, again.Cell(domain.C(0, 0)))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrScenarioNotFound, "Load after Delete should return ErrScenarioNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
