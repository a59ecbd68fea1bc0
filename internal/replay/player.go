// Package replay navigates a reconstructed trace step by step.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
)

// ErrEmpty is returned when there is nothing to navigate.
var ErrEmpty = errors.New("replay has no steps")

// Policy decides what a step that failed to reconstruct turns into.
type Policy int

const (
	// SkipFailed leaves failed steps out of the navigation sequence.
	SkipFailed Policy = iota
	// Placeholder keeps failed steps as an empty snapshot carrying the error.
	Placeholder
)

// ParsePolicy maps "skip" and "placeholder" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "skip", "":
		return SkipFailed, nil
	case "placeholder":
		return Placeholder, nil
	default:
		return SkipFailed, fmt.Errorf("unknown replay policy %q (want skip or placeholder)", s)
	}
}

func (p Policy) String() string {
	if p == Placeholder {
		return "placeholder"
	}
	return "skip"
}

// Entry is one navigable position. Step is the index in the original trace,
// which differs from the position once failed steps are skipped.
type Entry struct {
	Step     int
	Snapshot *domain.Snapshot
	Err      error
}

// RenderFunc is called with the entry the player moved to.
type RenderFunc func(Entry)

// Player walks the entries in trace order.
type Player struct {
	entries []Entry
	pos     int
	render  RenderFunc
	policy  Policy
	logger  *slog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithPolicy sets the failed-step policy.
func WithPolicy(p Policy) Option {
	return func(pl *Player) {
		pl.policy = p
	}
}

// WithRender registers the render callback.
func WithRender(fn RenderFunc) Option {
	return func(pl *Player) {
		pl.render = fn
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pl *Player) {
		pl.logger = logger
	}
}

// New builds a player over frames. cols and rows size placeholder snapshots.
func New(frames []trace.Frame, cols, rows int, opts ...Option) *Player {
	p := &Player{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}

	p.entries = make([]Entry, 0, len(frames))
	skipped := 0
	for _, f := range frames {
		if f.Err == nil {
			p.entries = append(p.entries, Entry{Step: f.Index, Snapshot: f.Snapshot})
			continue
		}
		switch p.policy {
		case Placeholder:
			p.entries = append(p.entries, Entry{Step: f.Index, Snapshot: domain.NewSnapshot(cols, rows), Err: f.Err})
		default:
			skipped++
		}
	}
	if skipped > 0 {
		p.logger.Info("skipping failed trace steps", "skipped", skipped, "kept", len(p.entries))
	}
	return p
}

// Len returns the number of navigable entries.
func (p *Player) Len() int {
	return len(p.entries)
}

// Position returns the current position in [0, Len()).
func (p *Player) Position() int {
	return p.pos
}

// Step returns the original trace index of the current entry.
func (p *Player) Step() int {
	if len(p.entries) == 0 {
		return -1
	}
	return p.entries[p.pos].Step
}

// Current returns the entry at the current position.
func (p *Player) Current() (Entry, error) {
	if len(p.entries) == 0 {
		return Entry{}, ErrEmpty
	}
	return p.entries[p.pos], nil
}

// Entries returns all navigable entries in order.
func (p *Player) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Seek moves to position i and renders it.
func (p *Player) Seek(i int) error {
	if len(p.entries) == 0 {
		return ErrEmpty
	}
	if i < 0 || i >= len(p.entries) {
		return fmt.Errorf("position %d out of range [0,%d)", i, len(p.entries))
	}
	p.pos = i
	if p.render != nil {
		p.render(p.entries[i])
	}
	return nil
}

// SeekStep moves to the entry reconstructed from trace step index.
func (p *Player) SeekStep(step int) error {
	for i, e := range p.entries {
		if e.Step == step {
			return p.Seek(i)
		}
	}
	return fmt.Errorf("trace step %d is not available", step)
}

// Next advances one position. It reports false at the end.
func (p *Player) Next() bool {
	if p.pos+1 >= len(p.entries) {
		return false
	}
	_ = p.Seek(p.pos + 1)
	return true
}

// Prev goes back one position. It reports false at the start.
func (p *Player) Prev() bool {
	if p.pos == 0 || len(p.entries) == 0 {
		return false
	}
	_ = p.Seek(p.pos - 1)
	return true
}

// First moves to the first entry.
func (p *Player) First() error {
	return p.Seek(0)
}

// Last moves to the final entry.
func (p *Player) Last() error {
	return p.Seek(len(p.entries) - 1)
}

// Play renders the current entry and then advances once per interval until
// the end is reached or ctx is cancelled. An interval of zero renders all
// remaining entries without waiting.
func (p *Player) Play(ctx context.Context, interval time.Duration) error {
	if err := p.Seek(p.pos); err != nil {
		return err
	}
	if interval <= 0 {
		for p.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if p.pos+1 >= len(p.entries) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Next()
		}
	}
}
