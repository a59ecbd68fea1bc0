package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/rescuegrid/internal/editor"
	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/aretw0/rescuegrid/pkg/ports"
)

// ErrClosed is returned by every method once Run has returned.
var ErrClosed = errors.New("session closed")

// ErrNoStore is returned by Save and Open when the session has no store.
var ErrNoStore = errors.New("session has no scenario store")

// Listener receives the change to the authoritative snapshot after every
// commit or replacement. Listeners run on the session loop and must not
// call back into the Session.
type Listener func(*domain.SnapshotDiff)

// State is a consistent read of the editing session.
type State struct {
	Snapshot      *domain.Snapshot
	LastPaintTool domain.CellState
	Dragging      bool
	Anchor        domain.Coord
}

// Session owns an editor.Engine on a single goroutine.
type Session struct {
	engine    *editor.Engine
	ops       chan func()
	done      chan struct{}
	listeners []Listener
	store     ports.ScenarioStore
	logger    *slog.Logger

	published *domain.Snapshot
}

// Option configures a Session.
type Option func(*Session)

// WithListener registers a diff listener.
func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, l)
	}
}

// WithStore sets the scenario store used by Save and Open.
func WithStore(store ports.ScenarioStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger configures a logger for the session loop.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New wraps engine. The caller must not use engine directly afterwards.
func New(engine *editor.Engine, opts ...Option) *Session {
	s := &Session{
		engine: engine,
		ops:    make(chan func()),
		done:   make(chan struct{}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.published = engine.Snapshot()
	return s
}

// Run processes queued operations until ctx is cancelled. It must be called
// exactly once; every other method blocks until Run picks its work up.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.logger.Debug("session loop started", "cols", s.engine.Cols(), "rows", s.engine.Rows())
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session loop stopped")
			return nil
		case op := <-s.ops:
			op()
		}
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cols returns the grid width. Dimensions are fixed for the session.
func (s *Session) Cols() int { return s.engine.Cols() }

// Rows returns the grid height.
func (s *Session) Rows() int { return s.engine.Rows() }

// do runs fn on the loop and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.ops <- op:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Begin starts a gesture.
func (s *Session) Begin(ctx context.Context, pos domain.Coord, button editor.Button) error {
	return s.do(ctx, func() {
		s.engine.BeginGesture(pos, button)
	})
}

// Update returns the live preview for the gesture in progress.
func (s *Session) Update(ctx context.Context, pos domain.Coord, button editor.Button, mods editor.Modifiers) (*domain.Snapshot, error) {
	var (
		preview *domain.Snapshot
		opErr   error
	)
	if err := s.do(ctx, func() {
		preview, opErr = s.engine.UpdateGesture(pos, button, mods)
	}); err != nil {
		return nil, err
	}
	return preview, opErr
}

// Commit ends the gesture and applies it, notifying listeners.
func (s *Session) Commit(ctx context.Context, pos domain.Coord, button editor.Button, mods editor.Modifiers) (editor.Effect, error) {
	var (
		effect editor.Effect
		opErr  error
	)
	if err := s.do(ctx, func() {
		effect, opErr = s.engine.CommitGesture(pos, button, mods)
		if opErr == nil {
			s.publish()
		}
	}); err != nil {
		return editor.Effect{}, err
	}
	return effect, opErr
}

// Cancel abandons the gesture in progress.
func (s *Session) Cancel(ctx context.Context) error {
	return s.do(ctx, s.engine.CancelGesture)
}

// Replace swaps the authoritative snapshot, serialized with gestures.
func (s *Session) Replace(ctx context.Context, snap *domain.Snapshot) error {
	var opErr error
	if err := s.do(ctx, func() {
		opErr = s.engine.ReplaceAuthoritative(snap)
		if opErr == nil {
			s.publish()
		}
	}); err != nil {
		return err
	}
	return opErr
}

// Snapshot returns a copy of the authoritative snapshot.
func (s *Session) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	if err := s.do(ctx, func() {
		snap = s.engine.Snapshot()
	}); err != nil {
		return nil, err
	}
	return snap, nil
}

// LastPaintTool returns the tool a drag would stamp.
func (s *Session) LastPaintTool(ctx context.Context) (domain.CellState, error) {
	var tool domain.CellState
	if err := s.do(ctx, func() {
		tool = s.engine.LastPaintTool()
	}); err != nil {
		return domain.Empty, err
	}
	return tool, nil
}

// State returns the snapshot and gesture status in one read.
func (s *Session) State(ctx context.Context) (State, error) {
	var st State
	if err := s.do(ctx, func() {
		st.Snapshot = s.engine.Snapshot()
		st.LastPaintTool = s.engine.LastPaintTool()
		st.Anchor, st.Dragging = s.engine.Anchor()
	}); err != nil {
		return State{}, err
	}
	return st, nil
}

// Save stores the authoritative snapshot under name.
func (s *Session) Save(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, name, snap); err != nil {
		return fmt.Errorf("failed to save scenario %q: %w", name, err)
	}
	s.logger.Info("scenario saved", "scenario", name)
	return nil
}

// Open loads the named scenario and makes it authoritative.
func (s *Session) Open(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load scenario %q: %w", name, err)
	}
	if err := s.Replace(ctx, snap); err != nil {
		return fmt.Errorf("failed to open scenario %q: %w", name, err)
	}
	s.logger.Info("scenario opened", "scenario", name)
	return nil
}

// publish diffs the engine against the last published snapshot and hands
// the change to listeners. Runs on the loop.
func (s *Session) publish() {
	current := s.engine.Snapshot()
	diff := domain.Diff(s.published, current)
	s.published = current
	if diff == nil {
		return
	}
	for _, l := range s.listeners {
		l(diff)
	}
}

var _ ports.LiveEditor = (*Session)(nil)
