package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/pkg/domain"
)

// ErrNoGesture is returned by UpdateGesture and CommitGesture when no
// gesture was begun.
var ErrNoGesture = errors.New("no gesture in progress")

// gesture is the pointer-down state between BeginGesture and CommitGesture.
type gesture struct {
	anchor   domain.Coord
	button   Button
	dragging bool
}

// Engine is the editing state machine. It exclusively owns the
// authoritative snapshot; callers only ever receive copies.
//
// Engine is not safe for concurrent use. Gesture calls and
// ReplaceAuthoritative must be serialized by the caller (see package session).
type Engine struct {
	cols, rows int
	snap       *domain.Snapshot
	cycle      domain.ToolCycle
	lastPaint  domain.CellState
	g          gesture

	hooks  domain.EditorHooks
	logger *slog.Logger
	now    func() time.Time

	initial *domain.Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnapshot starts the session from a copy of snap instead of an empty grid.
func WithSnapshot(snap *domain.Snapshot) Option {
	return func(e *Engine) {
		e.initial = snap
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.EditorHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger configures a logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithToolCycle replaces the default paint cycle.
func WithToolCycle(cycle domain.ToolCycle) Option {
	return func(e *Engine) {
		e.cycle = cycle
	}
}

// NewEngine creates an engine editing a cols x rows grid.
func NewEngine(cols, rows int, opts ...Option) (*Engine, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", cols, rows)
	}
	e := &Engine{
		cols:   cols,
		rows:   rows,
		cycle:  domain.DefaultToolCycle,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if len(e.cycle) == 0 {
		return nil, errors.New("tool cycle is empty")
	}
	for _, st := range e.cycle {
		if !st.Valid() || st == domain.Empty {
			return nil, fmt.Errorf("%w: %s cannot be a paint tool", domain.ErrInvalidCellState, st)
		}
	}
	e.lastPaint = e.cycle.First()

	if e.initial != nil {
		if err := e.check(e.initial); err != nil {
			return nil, err
		}
		e.snap = e.initial.Clone()
		e.initial = nil
	} else {
		e.snap = domain.NewSnapshot(cols, rows)
	}
	return e, nil
}

// Cols returns the grid width.
func (e *Engine) Cols() int { return e.cols }

// Rows returns the grid height.
func (e *Engine) Rows() int { return e.rows }

// BeginGesture anchors a new gesture at the clamped position. A gesture
// already in progress is abandoned. The snapshot is not touched.
func (e *Engine) BeginGesture(pos domain.Coord, button Button) {
	e.g = gesture{
		anchor:   Clamp(pos, e.cols, e.rows),
		button:   button,
		dragging: true,
	}
}

// UpdateGesture returns a preview: a detached copy of the authoritative
// snapshot with the resolved effect applied between the anchor and pos.
func (e *Engine) UpdateGesture(pos domain.Coord, button Button, mods Modifiers) (*domain.Snapshot, error) {
	if !e.g.dragging {
		return nil, ErrNoGesture
	}
	current := Clamp(pos, e.cols, e.rows)
	rect := NewRect(e.g.anchor, current)
	effect := Resolve(e.snap, e.g.anchor, current, e.effectiveButton(button), mods, e.lastPaint, e.cycle)

	preview := e.snap.Clone()
	Apply(preview, rect, effect)

	if e.hooks.OnPreview != nil {
		e.hooks.OnPreview(e.event(domain.EventPreview, effect, rect, e.lastPaint))
	}
	return preview, nil
}

// CommitGesture applies the resolved effect to the authoritative snapshot,
// updates the remembered paint tool, and ends the gesture.
func (e *Engine) CommitGesture(pos domain.Coord, button Button, mods Modifiers) (Effect, error) {
	if !e.g.dragging {
		return Effect{}, ErrNoGesture
	}
	current := Clamp(pos, e.cols, e.rows)
	rect := NewRect(e.g.anchor, current)
	effect := Resolve(e.snap, e.g.anchor, current, e.effectiveButton(button), mods, e.lastPaint, e.cycle)

	Apply(e.snap, rect, effect)
	e.snap.ReconcileEntities()
	e.lastPaint = NextPaintTool(effect, e.lastPaint, e.cycle)
	e.g = gesture{}

	e.logger.Debug("gesture committed",
		"effect", effect.String(),
		"min", rect.Min.String(),
		"max", rect.Max.String(),
		"last_paint_tool", e.lastPaint.String(),
	)
	if e.hooks.OnCommit != nil {
		e.hooks.OnCommit(e.event(domain.EventCommit, effect, rect, e.lastPaint))
	}
	return effect, nil
}

// CancelGesture abandons the gesture in progress, if any, without changes.
func (e *Engine) CancelGesture() {
	e.g = gesture{}
}

// ReplaceAuthoritative swaps in a copy of snap as the authoritative
// snapshot. The dimensions must match the session. A gesture in progress
// survives and resolves against the new content.
func (e *Engine) ReplaceAuthoritative(snap *domain.Snapshot) error {
	if err := e.check(snap); err != nil {
		return err
	}
	e.snap = snap.Clone()

	e.logger.Debug("authoritative snapshot replaced", "cols", e.cols, "rows", e.rows)
	if e.hooks.OnReplace != nil {
		e.hooks.OnReplace(&domain.ReplaceEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventReplace},
			Cols:      e.cols,
			Rows:      e.rows,
		})
	}
	return nil
}

// Snapshot returns a copy of the authoritative snapshot.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.snap.Clone()
}

// LastPaintTool returns the paint tool a drag would currently stamp.
func (e *Engine) LastPaintTool() domain.CellState {
	return e.lastPaint
}

// Dragging reports whether a gesture is in progress.
func (e *Engine) Dragging() bool {
	return e.g.dragging
}

// Anchor returns the anchor of the gesture in progress.
func (e *Engine) Anchor() (domain.Coord, bool) {
	return e.g.anchor, e.g.dragging
}

// effectiveButton merges the button reported with a move or release with the
// one recorded at press time. Terminals report releases without a button,
// and a middle press keeps clearing for the whole gesture.
func (e *Engine) effectiveButton(reported Button) Button {
	if e.g.button == ButtonMiddle || reported == ButtonMiddle {
		return ButtonMiddle
	}
	if reported == ButtonNone {
		return e.g.button
	}
	return reported
}

func (e *Engine) check(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	if snap.Cols() != e.cols || snap.Rows() != e.rows {
		return fmt.Errorf("%w: got %dx%d, session is %dx%d",
			domain.ErrDimensionMismatch, snap.Cols(), snap.Rows(), e.cols, e.rows)
	}
	return nil
}

func (e *Engine) event(typ domain.EventType, effect Effect, rect Rect, last domain.CellState) *domain.GestureEvent {
	ev := &domain.GestureEvent{
		EventBase:     domain.EventBase{Timestamp: e.now(), Type: typ},
		Effect:        effect.Kind.String(),
		Min:           rect.Min,
		Max:           rect.Max,
		LastPaintTool: last,
	}
	if effect.Kind == EffectPaint {
		ev.Paint = effect.Paint
	}
	return ev
}
