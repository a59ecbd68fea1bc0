// Package terminal holds the interactive tcell front-ends: the grid editor
// and the read-only step viewer.
//
// The screen shows a one-line status bar followed by the grid, two terminal
// columns per cell. In the editor, mouse press, drag and release become
// gesture begin, update and commit on a session.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/rescuegrid/internal/editor"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/session"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/gdamore/tcell/v2"
)

// GridTop is the screen row where grid row 0 is drawn.
const GridTop = 1

// CellWidth is the number of screen columns per grid cell.
const CellWidth = 2

// SaveFunc persists the current scenario.
type SaveFunc func(ctx context.Context) error

// App binds a tcell screen to an editing session.
type App struct {
	screen tcell.Screen
	sess   *session.Session
	save   SaveFunc
	saved  string
	title  string
	logger *slog.Logger

	pressed bool
	button  editor.Button
	preview *domain.Snapshot
	status  string
}

// Option configures an App.
type Option func(*App)

// WithSave enables the save key.
func WithSave(fn SaveFunc) Option {
	return func(a *App) {
		a.save = fn
	}
}

// WithSaveStatus replaces the status shown after a successful save.
func WithSaveStatus(msg string) Option {
	return func(a *App) {
		a.saved = msg
	}
}

// WithTitle sets the label shown at the left of the status bar.
func WithTitle(title string) Option {
	return func(a *App) {
		a.title = title
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates an App. The screen must already be initialized; the caller
// owns Init and Fini.
func New(screen tcell.Screen, sess *session.Session, opts ...Option) *App {
	a := &App{
		screen: screen,
		sess:   sess,
		saved:  "saved",
		title:  "rescuegrid",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes screen events until the user quits, the session closes, or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	defer a.screen.DisableMouse()
	return runLoop(ctx, a.screen, a.Draw, a.HandleEvent)
}

// HandleEvent applies one screen event. It reports whether the app should quit.
// Errors are fatal only when the session is gone; gesture errors end up in
// the status bar.
func (a *App) HandleEvent(ctx context.Context, ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	case *tcell.EventMouse:
		return false, a.check(a.handleMouse(ctx, ev))
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return false, nil
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) (bool, error) {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
		return true, nil
	case ev.Key() != tcell.KeyRune:
		return false, nil
	}

	switch ev.Rune() {
	case 'q':
		return true, nil
	case 'c':
		a.pressed = false
		a.preview = nil
		a.status = "gesture cancelled"
		return false, a.check(a.sess.Cancel(ctx))
	case 's':
		if a.save == nil {
			a.status = "no scenario name, cannot save"
			return false, nil
		}
		if err := a.save(ctx); err != nil {
			a.logger.Error("save failed", "err", err)
			if errors.Is(err, session.ErrClosed) {
				return false, err
			}
			a.status = "save failed: " + err.Error()
			return false, nil
		}
		a.status = a.saved
	}
	return false, nil
}

func (a *App) handleMouse(ctx context.Context, ev *tcell.EventMouse) error {
	sx, sy := ev.Position()
	pos := ScreenToGrid(sx, sy)
	button := convertButton(ev.Buttons())
	mods := convertMods(ev.Modifiers())

	switch {
	case !a.pressed && button != editor.ButtonNone:
		a.pressed = true
		a.button = button
		a.status = ""
		return a.sess.Begin(ctx, pos, button)

	case a.pressed && button != editor.ButtonNone:
		preview, err := a.sess.Update(ctx, pos, button, mods)
		if err != nil {
			return err
		}
		a.preview = preview
		return nil

	case a.pressed:
		a.pressed = false
		a.preview = nil
		effect, err := a.sess.Commit(ctx, pos, a.button, mods)
		if err != nil {
			return err
		}
		a.status = effect.String()
		return nil
	}
	return nil
}

// check keeps the app running on gesture-level errors.
func (a *App) check(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrClosed) || errors.Is(err, context.Canceled) {
		return err
	}
	a.status = err.Error()
	return nil
}

// Draw repaints the status bar and grid.
func (a *App) Draw(ctx context.Context) error {
	st, err := a.sess.State(ctx)
	if err != nil {
		return err
	}
	snap := st.Snapshot
	if a.preview != nil {
		snap = a.preview
	}

	a.screen.Clear()
	a.drawStatus(st)
	drawGrid(a.screen, snap)
	a.screen.Show()
	return nil
}

func (a *App) drawStatus(st session.State) {
	text := fmt.Sprintf(" %s | tool %s", a.title, st.LastPaintTool)
	if st.Dragging {
		text += " | anchor " + st.Anchor.String()
	}
	if a.status != "" {
		text += " | " + a.status
	}
	text += " | s save  c cancel  q quit"
	drawStatusLine(a.screen, text)
}

// ScreenToGrid converts a screen cell to a grid coordinate. The result may
// lie outside the grid; the engine clamps it.
func ScreenToGrid(sx, sy int) domain.Coord {
	return domain.C(floorDiv(sx, CellWidth), sy-GridTop)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func convertButton(b tcell.ButtonMask) editor.Button {
	switch {
	case b&tcell.ButtonMiddle != 0:
		return editor.ButtonMiddle
	case b&tcell.ButtonPrimary != 0:
		return editor.ButtonLeft
	case b&tcell.ButtonSecondary != 0:
		return editor.ButtonRight
	default:
		return editor.ButtonNone
	}
}

func convertMods(m tcell.ModMask) editor.Modifiers {
	var out editor.Modifiers
	if m&tcell.ModShift != 0 {
		out |= editor.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= editor.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= editor.ModAlt
	}
	return out
}
