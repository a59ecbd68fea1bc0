package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/rescuegrid/internal/replay"
	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewerFrames() []trace.Frame {
	snap := func(st domain.CellState) *domain.Snapshot {
		s := domain.NewSnapshot(3, 2)
		s.Cells[0][0] = st
		return s
	}
	return []trace.Frame{
		{Index: 0, Snapshot: snap(domain.Fire)},
		{Index: 1, Err: errors.New("step 1 broke\nsecond line")},
		{Index: 2, Snapshot: snap(domain.Exit)},
	}
}

type viewerFixture struct {
	screen tcell.SimulationScreen
	player *replay.Player
	viewer *Viewer
}

func setupViewer(t *testing.T, policy replay.Policy) *viewerFixture {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 6)
	t.Cleanup(screen.Fini)

	player := replay.New(viewerFrames(), 3, 2, replay.WithPolicy(policy))
	return &viewerFixture{
		screen: screen,
		player: player,
		viewer: NewViewer(screen, player, WithViewerTitle("run.json")),
	}
}

func (f *viewerFixture) key(t *testing.T, k tcell.Key, r rune) bool {
	t.Helper()
	quit, err := f.viewer.HandleEvent(context.Background(), tcell.NewEventKey(k, r, tcell.ModNone))
	require.NoError(t, err)
	require.NoError(t, f.viewer.Draw(context.Background()))
	return quit
}

func (f *viewerFixture) cellText(c domain.Coord) string {
	r1, _, _, _ := f.screen.GetContent(c.X*CellWidth, c.Y+GridTop)
	r2, _, _, _ := f.screen.GetContent(c.X*CellWidth+1, c.Y+GridTop)
	return string([]rune{r1, r2})
}

func (f *viewerFixture) statusLine() string {
	w, _ := f.screen.Size()
	out := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		r, _, _, _ := f.screen.GetContent(x, 0)
		out = append(out, r)
	}
	return string(out)
}

func TestViewer_ArrowKeysStep(t *testing.T) {
	f := setupViewer(t, replay.SkipFailed)
	require.NoError(t, f.viewer.Draw(context.Background()))
	assert.Equal(t, "##", f.cellText(domain.C(0, 0)))
	assert.Contains(t, f.statusLine(), "run.json | step 0 (1/2)")

	assert.False(t, f.key(t, tcell.KeyRight, 0))
	assert.Equal(t, 2, f.player.Step())
	assert.Equal(t, "[]", f.cellText(domain.C(0, 0)))
	assert.Contains(t, f.statusLine(), "step 2 (2/2)")

	assert.False(t, f.key(t, tcell.KeyRight, 0))
	assert.Equal(t, 2, f.player.Step(), "stays on the last entry")

	assert.False(t, f.key(t, tcell.KeyLeft, 0))
	assert.Equal(t, 0, f.player.Step())
	assert.False(t, f.key(t, tcell.KeyLeft, 0))
	assert.Equal(t, 0, f.player.Step(), "stays on the first entry")
}

func TestViewer_HomeEndAndRunes(t *testing.T) {
	f := setupViewer(t, replay.Placeholder)

	assert.False(t, f.key(t, tcell.KeyEnd, 0))
	assert.Equal(t, 2, f.player.Position())
	assert.False(t, f.key(t, tcell.KeyHome, 0))
	assert.Equal(t, 0, f.player.Position())

	assert.False(t, f.key(t, tcell.KeyRune, 'n'))
	assert.Equal(t, 1, f.player.Step())
	assert.Contains(t, f.statusLine(), "failed: step 1 broke; second line")
	assert.Equal(t, ". ", f.cellText(domain.C(0, 0)), "placeholder is an empty grid")

	assert.False(t, f.key(t, tcell.KeyRune, ' '))
	assert.Equal(t, 2, f.player.Step())
	assert.False(t, f.key(t, tcell.KeyRune, 'p'))
	assert.Equal(t, 1, f.player.Step())

	assert.True(t, f.key(t, tcell.KeyRune, 'q'))
	assert.True(t, f.key(t, tcell.KeyEscape, 0))
}

func TestViewer_Run(t *testing.T) {
	t.Run("Quit key", func(t *testing.T) {
		f := setupViewer(t, replay.SkipFailed)
		done := make(chan error, 1)
		go func() { done <- f.viewer.Run(context.Background()) }()
		require.NoError(t, f.screen.PostEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)))
		require.NoError(t, f.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("viewer did not quit")
		}
		assert.Equal(t, 2, f.player.Step())
	})

	t.Run("Empty player", func(t *testing.T) {
		f := setupViewer(t, replay.SkipFailed)
		empty := NewViewer(f.screen, replay.New(nil, 3, 2))
		assert.ErrorIs(t, empty.Run(context.Background()), replay.ErrEmpty)
	})
}
