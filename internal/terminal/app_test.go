package terminal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/rescuegrid/internal/editor"
	"github.com/aretw0/rescuegrid/internal/session"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	screen tcell.SimulationScreen
	sess   *session.Session
	app    *App
	saves  int
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 12)
	t.Cleanup(screen.Fini)

	engine, err := editor.NewEngine(10, 10)
	require.NoError(t, err)
	sess := session.New(engine)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = sess.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-sess.Done()
	})

	f := &fixture{screen: screen, sess: sess}
	opts = append([]Option{WithSave(func(context.Context) error {
		f.saves++
		return nil
	})}, opts...)
	f.app = New(screen, sess, opts...)
	return f
}

// mouse sends a mouse event at grid coordinate c.
func (f *fixture) mouse(t *testing.T, c domain.Coord, b tcell.ButtonMask, m tcell.ModMask) {
	t.Helper()
	quit, err := f.app.HandleEvent(context.Background(), tcell.NewEventMouse(c.X*CellWidth, c.Y+GridTop, b, m))
	require.NoError(t, err)
	require.False(t, quit)
}

func (f *fixture) key(t *testing.T, k tcell.Key, r rune) bool {
	t.Helper()
	quit, err := f.app.HandleEvent(context.Background(), tcell.NewEventKey(k, r, tcell.ModNone))
	require.NoError(t, err)
	return quit
}

func (f *fixture) snapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	snap, err := f.sess.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func (f *fixture) cellText(c domain.Coord) string {
	r1, _, _, _ := f.screen.GetContent(c.X*CellWidth, c.Y+GridTop)
	r2, _, _, _ := f.screen.GetContent(c.X*CellWidth+1, c.Y+GridTop)
	return string([]rune{r1, r2})
}

func (f *fixture) statusLine() string {
	w, _ := f.screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := f.screen.GetContent(x, 0)
		b.WriteRune(r)
	}
	return b.String()
}

func TestScreenToGrid(t *testing.T) {
	assert.Equal(t, domain.C(0, 0), ScreenToGrid(0, 1))
	assert.Equal(t, domain.C(0, 0), ScreenToGrid(1, 1))
	assert.Equal(t, domain.C(3, 4), ScreenToGrid(7, 5))
	assert.Equal(t, domain.C(0, -1), ScreenToGrid(0, 0))
	assert.Equal(t, domain.C(-1, 0), ScreenToGrid(-1, 1))
}

func TestConvert(t *testing.T) {
	assert.Equal(t, editor.ButtonLeft, convertButton(tcell.ButtonPrimary))
	assert.Equal(t, editor.ButtonRight, convertButton(tcell.ButtonSecondary))
	assert.Equal(t, editor.ButtonMiddle, convertButton(tcell.ButtonMiddle))
	assert.Equal(t, editor.ButtonMiddle, convertButton(tcell.ButtonPrimary|tcell.ButtonMiddle))
	assert.Equal(t, editor.ButtonNone, convertButton(tcell.ButtonNone))
	assert.Equal(t, editor.ButtonNone, convertButton(tcell.WheelUp))

	assert.Equal(t, editor.ModShift|editor.ModAlt, convertMods(tcell.ModShift|tcell.ModAlt))
	assert.Equal(t, editor.ModNone, convertMods(tcell.ModNone))
}

func TestApp_ClickCyclesAndDraws(t *testing.T) {
	f := setup(t)
	at := domain.C(3, 3)

	f.mouse(t, at, tcell.ButtonPrimary, tcell.ModNone)
	f.mouse(t, at, tcell.ButtonNone, tcell.ModNone)
	assert.Equal(t, domain.Fire, f.snapshot(t).Cell(at))

	f.mouse(t, at, tcell.ButtonPrimary, tcell.ModNone)
	f.mouse(t, at, tcell.ButtonNone, tcell.ModNone)
	assert.Equal(t, domain.Exit, f.snapshot(t).Cell(at))

	require.NoError(t, f.app.Draw(context.Background()))
	assert.Equal(t, "[]", f.cellText(at))
	assert.Equal(t, ". ", f.cellText(domain.C(0, 0)))
	assert.Contains(t, f.statusLine(), "tool EXIT")
}

func TestApp_DragShowsPreview(t *testing.T) {
	f := setup(t)

	f.mouse(t, domain.C(0, 0), tcell.ButtonPrimary, tcell.ModNone)
	f.mouse(t, domain.C(2, 2), tcell.ButtonPrimary, tcell.ModNone)

	require.NoError(t, f.app.Draw(context.Background()))
	assert.Equal(t, "##", f.cellText(domain.C(2, 2)))
	assert.Equal(t, domain.Empty, f.snapshot(t).Cell(domain.C(2, 2)), "preview only")
	assert.Contains(t, f.statusLine(), "anchor (0,0)")

	f.mouse(t, domain.C(2, 2), tcell.ButtonNone, tcell.ModNone)
	snap := f.snapshot(t)
	editor.NewRect(domain.C(0, 0), domain.C(2, 2)).Each(func(c domain.Coord) {
		assert.Equal(t, domain.Fire, snap.Cell(c))
	})
}

func TestApp_ShiftAndMiddle(t *testing.T) {
	f := setup(t)
	at := domain.C(5, 5)

	f.mouse(t, at, tcell.ButtonPrimary, tcell.ModShift)
	f.mouse(t, at, tcell.ButtonNone, tcell.ModShift)
	assert.True(t, f.snapshot(t).Drone(at))
	assert.Equal(t, domain.Empty, f.snapshot(t).Cell(at))

	require.NoError(t, f.app.Draw(context.Background()))
	assert.Equal(t, ".*", f.cellText(at))

	f.mouse(t, at, tcell.ButtonMiddle, tcell.ModNone)
	f.mouse(t, at, tcell.ButtonNone, tcell.ModNone)
	assert.False(t, f.snapshot(t).Drone(at))
}

func TestApp_PointerOutsideGridIsClamped(t *testing.T) {
	f := setup(t)
	quit, err := f.app.HandleEvent(context.Background(), tcell.NewEventMouse(39, 0, tcell.ButtonPrimary, tcell.ModNone))
	require.NoError(t, err)
	require.False(t, quit)
	_, err = f.app.HandleEvent(context.Background(), tcell.NewEventMouse(39, 0, tcell.ButtonNone, tcell.ModNone))
	require.NoError(t, err)

	assert.Equal(t, domain.Fire, f.snapshot(t).Cell(domain.C(9, 0)))
}

func TestApp_Keys(t *testing.T) {
	f := setup(t)

	assert.False(t, f.key(t, tcell.KeyRune, 's'))
	assert.Equal(t, 1, f.saves)

	f.mouse(t, domain.C(1, 1), tcell.ButtonPrimary, tcell.ModNone)
	f.mouse(t, domain.C(4, 4), tcell.ButtonPrimary, tcell.ModNone)
	assert.False(t, f.key(t, tcell.KeyRune, 'c'))
	st, err := f.sess.State(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Dragging)

	assert.False(t, f.key(t, tcell.KeyRune, 'x'))
	assert.True(t, f.key(t, tcell.KeyRune, 'q'))
	assert.True(t, f.key(t, tcell.KeyEscape, 0))
}

func TestApp_SaveFailureShownInStatus(t *testing.T) {
	f := setup(t, WithSave(func(context.Context) error { return errors.New("disk full") }))
	assert.False(t, f.key(t, tcell.KeyRune, 's'))
	require.NoError(t, f.app.Draw(context.Background()))
	assert.Contains(t, f.statusLine(), "save failed")
}

func TestApp_Run(t *testing.T) {
	t.Run("Quit key", func(t *testing.T) {
		f := setup(t)
		done := make(chan error, 1)
		go func() { done <- f.app.Run(context.Background()) }()
		require.NoError(t, f.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("app did not quit")
		}
	})

	t.Run("Context cancel", func(t *testing.T) {
		f := setup(t)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- f.app.Run(ctx) }()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("app did not stop")
		}
	})
}
