package trace

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/pkg/domain"
)

// Variable is one named sample of the simulation's flat namespace.
// Value is whatever the trace decoder produced (Go number, json.Number, string).
type Variable struct {
	Name  string
	Value any
}

// Step is one discrete sampled instant. Order matters: when a name repeats,
// the last occurrence wins.
type Step []Variable

// Frame is the reconstruction result for one step. Exactly one of Snapshot
// and Err is set.
type Frame struct {
	Index    int
	Snapshot *domain.Snapshot
	Err      error
}

// OK reports whether the step reconstructed cleanly.
func (f Frame) OK() bool {
	return f.Err == nil
}

// MaxDimension bounds both grid axes. Trace indices at or beyond it are
// never used to size a grid.
const MaxDimension = 4096

// Reconstructor turns trace steps into typed grid snapshots.
// It holds no state between steps; each step is reconstructed in isolation.
type Reconstructor struct {
	cols, rows int
	logger     *slog.Logger
	observer   func(Frame)
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithLogger configures a logger for step failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconstructor) {
		r.logger = logger
	}
}

// WithObserver registers a callback invoked for every reconstructed frame.
func WithObserver(fn func(Frame)) Option {
	return func(r *Reconstructor) {
		r.observer = fn
	}
}

// New creates a Reconstructor for a cols x rows grid.
func New(cols, rows int, opts ...Option) (*Reconstructor, error) {
	if cols <= 0 || rows <= 0 || cols > MaxDimension || rows > MaxDimension {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d (each axis must be in 1..%d)", cols, rows, MaxDimension)
	}
	r := &Reconstructor{
		cols:   cols,
		rows:   rows,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reconstruct produces one frame per input step, in input order. A failing
// step yields a frame carrying its error and never affects other steps.
func (r *Reconstructor) Reconstruct(steps []Step) []Frame {
	frames := make([]Frame, len(steps))
	for i, step := range steps {
		snap, err := r.Step(i, step)
		frames[i] = Frame{Index: i, Snapshot: snap, Err: err}
		if err != nil {
			r.logger.Warn("trace step failed to reconstruct", "step", i, "err", err)
		}
		if r.observer != nil {
			r.observer(frames[i])
		}
	}
	return frames
}

type dronePos struct {
	x, y       int
	hasX, hasY bool
}

// Step reconstructs a single step. All problems found in the step are
// returned joined; each is a *TraceParseError.
func (r *Reconstructor) Step(index int, step Step) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot(r.cols, r.rows)
	var errs []error
	fail := func(name string, raw any, reason string) {
		errs = append(errs, &TraceParseError{Step: index, Variable: name, Raw: raw, Reason: reason})
	}

	drones := map[int]*dronePos{}
	entities := map[string]int{}
	seen := map[string]bool{}

	for _, v := range step {
		name := strings.TrimSpace(v.Name)
		n := parseName(name)
		if n.kind == kindUnknown {
			continue
		}
		seen[name] = true

		val, ok := toInt(v.Value)
		if !ok {
			fail(name, v.Value, reasonNotInteger)
			continue
		}

		switch n.kind {
		case kindCell:
			c := domain.C(n.x, n.y)
			if !snap.In(c) {
				fail(name, v.Value, reasonOutOfBounds)
				continue
			}
			st, err := domain.CellStateFromOrdinal(val)
			if err != nil {
				fail(name, v.Value, reasonBadCellState)
				continue
			}
			snap.Cells[c.X][c.Y] = st

		case kindDroneCell:
			c := domain.C(n.x, n.y)
			if !snap.In(c) {
				fail(name, v.Value, reasonOutOfBounds)
				continue
			}
			snap.Drones[c.X][c.Y] = val != 0

		case kindDroneAxis:
			if n.id < 1 {
				fail(name, v.Value, reasonBadDroneID)
				continue
			}
			d := drones[n.id]
			if d == nil {
				d = &dronePos{}
				drones[n.id] = d
			}
			if n.axis == 'x' {
				d.x, d.hasX = val, true
			} else {
				d.y, d.hasY = val, true
			}

		case kindEntityAxis:
			entities[name] = val
		}
	}

	// Per-entity drone positions fold into the overlay, the canonical form.
	ids := make([]int, 0, len(drones))
	for id := range drones {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		d := drones[id]
		if !d.hasX || !d.hasY {
			axis := "y"
			if !d.hasX {
				axis = "x"
			}
			name := "drone_" + strconv.Itoa(id) + "." + axis
			if !seen[name] {
				fail(name, nil, reasonMissing)
			}
			continue
		}
		c := domain.C(d.x, d.y)
		if !snap.In(c) {
			fail("drone_"+strconv.Itoa(id), c.String(), reasonOutOfBounds)
			continue
		}
		snap.Drones[c.X][c.Y] = true
	}

	snap.FirstResponders = r.positions(index, EntityFirstResponder, snap.CountResponders(), entities, seen, snap, fail)
	snap.Survivors = r.positions(index, EntitySurvivor, snap.CountSurvivors(), entities, seen, snap, fail)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return snap, nil
}

// positions looks up the first count entity positions. A missing coordinate
// is reported instead of defaulting to (0,0).
func (r *Reconstructor) positions(index int, entity string, count int, vars map[string]int, seen map[string]bool, snap *domain.Snapshot, fail func(string, any, string)) []domain.Coord {
	out := make([]domain.Coord, 0, count)
	for i := 0; i < count; i++ {
		xName := EntityVariable(entity, i, 'x')
		yName := EntityVariable(entity, i, 'y')
		x, okX := vars[xName]
		y, okY := vars[yName]
		if !okX || !okY {
			if !okX && !seen[xName] {
				fail(xName, nil, reasonMissing)
			}
			if !okY && !seen[yName] {
				fail(yName, nil, reasonMissing)
			}
			continue
		}
		c := domain.C(x, y)
		if !snap.In(c) {
			fail(entity+"("+strconv.Itoa(i)+").pos", c.String(), reasonOutOfBounds)
			continue
		}
		out = append(out, c)
	}
	if extra := countExtra(entity, count, vars); extra > 0 {
		r.logger.Debug("trace step has positions for absent entities", "step", index, "entity", entity, "extra", extra)
	}
	return out
}

func countExtra(entity string, count int, vars map[string]int) int {
	extra := 0
	for i := count; ; i++ {
		if _, ok := vars[EntityVariable(entity, i, 'x')]; !ok {
			return extra
		}
		extra++
	}
}

// Snapshots returns the snapshots of all frames, or the joined errors of the
// failing frames if any step failed.
func Snapshots(frames []Frame) ([]*domain.Snapshot, error) {
	out := make([]*domain.Snapshot, 0, len(frames))
	var errs []error
	for _, f := range frames {
		if f.Err != nil {
			errs = append(errs, f.Err)
			continue
		}
		out = append(out, f.Snapshot)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// InferDimensions derives the grid size from the largest map/drone_map
// indices found across all steps. Indices outside [0, MaxDimension) are
// ignored; the steps holding them fail reconstruction as out of bounds.
// ok is false when no usable grid variable exists.
func InferDimensions(steps []Step) (cols, rows int, ok bool) {
	for _, step := range steps {
		for _, v := range step {
			n := parseName(v.Name)
			if n.kind != kindCell && n.kind != kindDroneCell {
				continue
			}
			if n.x < 0 || n.y < 0 || n.x >= MaxDimension || n.y >= MaxDimension {
				continue
			}
			ok = true
			cols = max(cols, n.x+1)
			rows = max(rows, n.y+1)
		}
	}
	return cols, rows, ok
}
