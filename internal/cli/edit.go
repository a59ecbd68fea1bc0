package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/editor"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/session"
	"github.com/aretw0/rescuegrid/internal/terminal"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
	"github.com/gdamore/tcell/v2"
)

// DefaultScenario names the scenario edited when none is given.
const DefaultScenario = "untitled"

// MemorySaveStatus is shown after saving to the memory backend.
const MemorySaveStatus = "saved in memory only, lost on exit"

// EditOptions configures RunEdit.
type EditOptions struct {
	Config   config.Config
	Scenario string
	Logger   *slog.Logger
	// Screen replaces the real terminal, e.g. with a simulation screen.
	Screen tcell.Screen
}

// RunEdit opens the interactive grid editor on the named scenario. An
// unknown scenario starts as an empty grid of the configured size.
func RunEdit(ctx context.Context, opts EditOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	name := opts.Scenario
	if name == "" {
		name = DefaultScenario
	}
	if err := domain.ValidateScenarioName(name); err != nil {
		return err
	}

	store, closeStore, err := OpenStore(opts.Config.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := newEngine(ctx, store, name, opts.Config.Grid, logger, domain.EditorHooks{})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := session.New(engine, session.WithStore(store), session.WithLogger(logger))
	go func() {
		_ = sess.Run(ctx)
	}()

	screen, err := openScreen(opts.Screen)
	if err != nil {
		return err
	}
	defer screen.Fini()

	appOpts := []terminal.Option{
		terminal.WithTitle(name),
		terminal.WithLogger(logger),
		terminal.WithSave(func(ctx context.Context) error {
			if err := sess.Save(ctx, name); err != nil {
				return err
			}
			logger.Info("scenario saved", "scenario", name, "backend", opts.Config.Store.Backend)
			return nil
		}),
	}
	if opts.Config.Store.Backend == config.BackendMemory {
		logger.Warn("memory store selected, saved scenarios are lost on exit", "scenario", name)
		appOpts = append(appOpts, terminal.WithSaveStatus(MemorySaveStatus))
	}

	app := terminal.New(screen, sess, appOpts...)
	return handleExecutionError(app.Run(ctx))
}

// openScreen initializes screen, or the real terminal when screen is nil.
// The caller owns Fini.
func openScreen(screen tcell.Screen) (tcell.Screen, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("failed to open terminal: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init terminal: %w", err)
	}
	return screen, nil
}

// newEngine builds an editor over the stored scenario, or over an empty
// grid when the scenario does not exist yet.
func newEngine(ctx context.Context, store ports.ScenarioStore, name string, grid config.GridConfig, logger *slog.Logger, hooks domain.EditorHooks) (*editor.Engine, error) {
	cols, rows := grid.Cols, grid.Rows
	opts := []editor.Option{editor.WithLogger(logger), editor.WithHooks(hooks)}

	if name != "" {
		snap, err := store.Load(ctx, name)
		switch {
		case err == nil:
			cols, rows = snap.Cols(), snap.Rows()
			opts = append(opts, editor.WithSnapshot(snap))
			logger.Info("scenario loaded", "scenario", name, "cols", cols, "rows", rows)
		case errors.Is(err, domain.ErrScenarioNotFound):
			logger.Info("new scenario", "scenario", name, "cols", cols, "rows", rows)
		default:
			return nil, fmt.Errorf("failed to load scenario %q: %w", name, err)
		}
	}

	return editor.NewEngine(cols, rows, opts...)
}

// debugHooks logs every editor event at debug level.
func debugHooks(logger *slog.Logger) domain.EditorHooks {
	return domain.EditorHooks{
		OnPreview: func(e *domain.GestureEvent) {
			logger.Debug("Gesture Preview", "effect", e.Effect, "min", e.Min, "max", e.Max)
		},
		OnCommit: func(e *domain.GestureEvent) {
			logger.Debug("Gesture Commit", "effect", e.Effect, "min", e.Min, "max", e.Max, "last_paint_tool", e.LastPaintTool)
		},
		OnReplace: func(e *domain.ReplaceEvent) {
			logger.Debug("Snapshot Replaced", "cols", e.Cols, "rows", e.Rows)
		},
	}
}
