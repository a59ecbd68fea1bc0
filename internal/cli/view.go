package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/replay"
	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/gdamore/tcell/v2"
)

// ViewOptions configures RunView. Exactly one of Path and Scenario is set.
type ViewOptions struct {
	// Path is a snapshot JSON file or a trace file.
	Path string
	// Scenario names a snapshot in the configured store.
	Scenario string
	Config   config.Config
	// Cols, Rows and Policy apply when Path is a trace.
	Cols, Rows int
	Policy     string
	Screen     tcell.Screen
	Logger     *slog.Logger
}

// RunView shows a snapshot read-only. A trace file opens the step viewer
// over all of its steps.
func RunView(ctx context.Context, opts ViewOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if (opts.Path == "") == (opts.Scenario == "") {
		return errors.New("view needs either a file or a scenario name")
	}

	if opts.Scenario != "" {
		snap, err := loadScenario(ctx, opts.Config.Store, opts.Scenario, logger)
		if err != nil {
			return err
		}
		return view(ctx, opts.Screen, single(snap), opts.Scenario, logger)
	}

	isTrace, err := IsTraceFile(opts.Path)
	if err != nil {
		return err
	}
	if isTrace {
		return RunReplay(ctx, ReplayOptions{
			TracePath:   opts.Path,
			Cols:        opts.Cols,
			Rows:        opts.Rows,
			Step:        -1,
			Policy:      opts.Policy,
			Interactive: true,
			Screen:      opts.Screen,
			Logger:      logger,
		})
	}

	snap, err := ValidateSnapshotFile(opts.Path, false)
	if err != nil {
		return err
	}
	return view(ctx, opts.Screen, single(snap), filepath.Base(opts.Path), logger)
}

func loadScenario(ctx context.Context, cfg config.StoreConfig, name string, logger *slog.Logger) (*domain.Snapshot, error) {
	store, closeStore, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	snap, err := store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %q: %w", name, err)
	}
	return snap, nil
}

// single wraps one snapshot in a one-entry player.
func single(snap *domain.Snapshot) *replay.Player {
	return replay.New([]trace.Frame{{Index: 0, Snapshot: snap}}, snap.Cols(), snap.Rows())
}
