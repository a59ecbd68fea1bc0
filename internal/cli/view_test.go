package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/terminal"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// screenRow returns the text shown on one row of a simulation screen.
func screenRow(screen tcell.SimulationScreen, row int) string {
	cells, w, h := screen.GetContents()
	if row >= h || len(cells) < (row+1)*w {
		return ""
	}
	var b strings.Builder
	for _, c := range cells[row*w : (row+1)*w] {
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		}
	}
	return b.String()
}

func waitRow(t *testing.T, screen tcell.SimulationScreen, row int, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(screenRow(screen, row), want)
	}, 2*time.Second, 10*time.Millisecond, "row %d never showed %q", row, want)
}

func runAsync(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}

func TestRunView_SnapshotFile(t *testing.T) {
	snap := domain.NewSnapshot(3, 2)
	_ = snap.SetCell(domain.C(1, 1), domain.Exit)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := writeFile(t, "map.json", string(data))

	screen := tcell.NewSimulationScreen("UTF-8")
	done := runAsync(func() error {
		return RunView(context.Background(), ViewOptions{Path: path, Screen: screen})
	})
	driveScreen(t, screen)
	waitRow(t, screen, 0, "map.json | step 0 (1/1)")
	waitRow(t, screen, terminal.GridTop, ". . . ")
	waitRow(t, screen, terminal.GridTop+1, ". []. ")

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	waitDone(t, done)
}

func TestRunView_TraceSteps(t *testing.T) {
	path := writeFile(t, "run.json", sampleTrace)

	screen := tcell.NewSimulationScreen("UTF-8")
	done := runAsync(func() error {
		return RunView(context.Background(), ViewOptions{Path: path, Policy: "placeholder", Screen: screen})
	})
	driveScreen(t, screen)
	waitRow(t, screen, 0, "run.json | step 0 (1/2)")

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)))
	waitRow(t, screen, 0, "step 1 (2/2) | failed: ")

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)))
	waitRow(t, screen, 0, "step 0 (1/2)")

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	waitDone(t, done)
}

func TestRunView_StoredScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = t.TempDir()

	store, _, err := OpenStore(cfg.Store, logging.NewNop())
	require.NoError(t, err)
	snap := domain.NewSnapshot(2, 2)
	_ = snap.SetCell(domain.C(0, 0), domain.Fire)
	require.NoError(t, store.Save(context.Background(), "site-a", snap))

	screen := tcell.NewSimulationScreen("UTF-8")
	done := runAsync(func() error {
		return RunView(context.Background(), ViewOptions{Scenario: "site-a", Config: cfg, Screen: screen})
	})
	driveScreen(t, screen)
	waitRow(t, screen, 0, "site-a | step 0 (1/1)")
	waitRow(t, screen, terminal.GridTop, "##. ")

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	waitDone(t, done)
}

func TestRunView_Errors(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, RunView(ctx, ViewOptions{}))
	assert.Error(t, RunView(ctx, ViewOptions{Path: "a.json", Scenario: "b"}))

	cfg := config.Default()
	cfg.Store.Path = t.TempDir()
	err := RunView(ctx, ViewOptions{Scenario: "missing", Config: cfg})
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)

	bad := writeFile(t, "bad.json", `{"cells": [[0]], "drones": [[7]]}`)
	assert.ErrorIs(t, RunView(ctx, ViewOptions{Path: bad}), domain.ErrInvalidSnapshot)
}
