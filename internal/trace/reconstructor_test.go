package trace_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(name string, value any) trace.Variable {
	return trace.Variable{Name: name, Value: value}
}

func newReconstructor(t *testing.T) *trace.Reconstructor {
	t.Helper()
	r, err := trace.New(4, 3)
	require.NoError(t, err)
	return r
}

func parseErrors(t *testing.T, err error) []*trace.TraceParseError {
	t.Helper()
	require.Error(t, err)
	var out []*trace.TraceParseError
	var walk func(error)
	walk = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var pe *trace.TraceParseError
		if errors.As(e, &pe) {
			out = append(out, pe)
		}
	}
	walk(err)
	return out
}

func TestNew_RejectsBadDimensions(t *testing.T) {
	_, err := trace.New(0, 3)
	assert.Error(t, err)
	_, err = trace.New(3, -1)
	assert.Error(t, err)
}

func TestStep_CellsAndEntities(t *testing.T) {
	r := newReconstructor(t)

	snap, err := r.Step(0, trace.Step{
		v("map[0][0]", 1),
		v("map[1][2]", json.Number("3")),
		v("map[3][1]", "8"),
		v("map[2][2]", 6.0),
		v("FirstResponder(0).pos.x", 1),
		v("FirstResponder(0).pos.y", 2),
		v("FirstResponder(1).pos.x", 3),
		v("FirstResponder(1).pos.y", 1),
		v("Survivor(0).pos.x", 2),
		v("Survivor(0).pos.y", 2),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Fire, snap.Cell(domain.C(0, 0)))
	assert.Equal(t, domain.FirstResponder, snap.Cell(domain.C(1, 2)))
	assert.Equal(t, domain.ResponderAssisting, snap.Cell(domain.C(3, 1)))
	assert.Equal(t, domain.SurvivorInNeed, snap.Cell(domain.C(2, 2)))
	assert.Equal(t, []domain.Coord{domain.C(1, 2), domain.C(3, 1)}, snap.FirstResponders)
	assert.Equal(t, []domain.Coord{domain.C(2, 2)}, snap.Survivors)
	assert.NoError(t, snap.Validate())
	assert.NoError(t, snap.ValidateEntities())
}

func TestStep_IgnoresUnknownNames(t *testing.T) {
	r := newReconstructor(t)
	snap, err := r.Step(0, trace.Step{
		v("map[0][1]", 2),
		v("global_time", 12.5),
		v("Drone(0).battery", "low"),
		v("mapping[0][0]", "junk"),
		v("map[0]", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Exit, snap.Cell(domain.C(0, 1)))
}

func TestStep_LastWriteWins(t *testing.T) {
	r := newReconstructor(t)
	snap, err := r.Step(0, trace.Step{
		v("map[2][0]", 1),
		v("map[2][0]", 2),
		v("drone_map[2][0]", 1),
		v("drone_map[2][0]", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Exit, snap.Cell(domain.C(2, 0)))
	assert.False(t, snap.Drone(domain.C(2, 0)))
}

func TestStep_DroneFormatsNormalizeToOverlay(t *testing.T) {
	r := newReconstructor(t)

	grid, err := r.Step(0, trace.Step{
		v("drone_map[1][1]", 1),
		v("drone_map[3][2]", 1),
		v("drone_map[0][0]", 0),
	})
	require.NoError(t, err)

	perEntity, err := r.Step(1, trace.Step{
		v("drone_1.x", 1),
		v("drone_1.y", 1),
		v("drone_2.x", 3),
		v("drone_2.y", 2),
	})
	require.NoError(t, err)

	assert.True(t, grid.Equal(perEntity), "both drone shapes must produce the same overlay")
	assert.True(t, perEntity.Drone(domain.C(3, 2)))
	assert.Equal(t, domain.Empty, perEntity.Cell(domain.C(3, 2)), "drones never touch cells")
}

func TestStep_Errors(t *testing.T) {
	tests := []struct {
		name     string
		step     trace.Step
		variable string
		reason   string
	}{
		{"non-integer cell", trace.Step{v("map[0][0]", "fire")}, "map[0][0]", "not an integer"},
		{"fractional cell", trace.Step{v("map[0][0]", 1.5)}, "map[0][0]", "not an integer"},
		{"boolean drone", trace.Step{v("drone_map[0][0]", true)}, "drone_map[0][0]", "not an integer"},
		{"bad ordinal", trace.Step{v("map[0][0]", 9)}, "map[0][0]", "cell state"},
		{"cell out of grid", trace.Step{v("map[4][0]", 1)}, "map[4][0]", "outside"},
		{"drone id zero", trace.Step{v("drone_0.x", 1), v("drone_0.y", 1)}, "drone_0.x", "1-based"},
		{"drone missing y", trace.Step{v("drone_1.x", 1)}, "drone_1.y", "missing"},
		{"drone out of grid", trace.Step{v("drone_1.x", 9), v("drone_1.y", 0)}, "drone_1", "outside"},
		{"missing responder position", trace.Step{v("map[1][1]", 3), v("FirstResponder(0).pos.x", 1)}, "FirstResponder(0).pos.y", "missing"},
		{"missing survivor position", trace.Step{v("map[1][1]", 7)}, "Survivor(0).pos.x", "missing"},
		{"entity out of grid", trace.Step{v("map[1][1]", 4), v("Survivor(0).pos.x", 1), v("Survivor(0).pos.y", 7)}, "Survivor(0).pos", "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReconstructor(t)
			snap, err := r.Step(5, tt.step)
			assert.Nil(t, snap)

			errs := parseErrors(t, err)
			require.NotEmpty(t, errs)
			assert.Equal(t, 5, errs[0].Step)
			assert.Equal(t, tt.variable, errs[0].Variable)
			assert.Contains(t, errs[0].Reason, tt.reason)
		})
	}
}

func TestStep_BadEntityValueReportedOnce(t *testing.T) {
	r := newReconstructor(t)
	_, err := r.Step(0, trace.Step{
		v("map[1][1]", 3),
		v("FirstResponder(0).pos.x", "??"),
		v("FirstResponder(0).pos.y", 1),
	})
	errs := parseErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "FirstResponder(0).pos.x", errs[0].Variable)
}

func TestReconstruct_OrderAndIsolation(t *testing.T) {
	r := newReconstructor(t)
	steps := []trace.Step{
		{v("map[0][0]", 1)},
		{v("map[0][0]", "oops")},
		{v("map[0][0]", 2), v("drone_map[1][1]", 1)},
		{},
	}

	frames := r.Reconstruct(steps)
	require.Len(t, frames, len(steps))

	for i, f := range frames {
		assert.Equal(t, i, f.Index)
	}
	assert.True(t, frames[0].OK())
	assert.False(t, frames[1].OK())
	assert.Nil(t, frames[1].Snapshot)
	assert.True(t, frames[2].OK())
	assert.True(t, frames[3].OK())

	var pe *trace.TraceParseError
	require.ErrorAs(t, frames[1].Err, &pe)
	assert.Equal(t, 1, pe.Step)
	assert.Equal(t, "oops", pe.Raw)

	assert.Equal(t, domain.Fire, frames[0].Snapshot.Cell(domain.C(0, 0)))
	assert.Equal(t, domain.Exit, frames[2].Snapshot.Cell(domain.C(0, 0)))
	assert.True(t, frames[3].Snapshot.Equal(domain.NewSnapshot(4, 3)))

	// Each frame depends only on its own step.
	alone, err := r.Step(2, steps[2])
	require.NoError(t, err)
	assert.True(t, alone.Equal(frames[2].Snapshot))
}

func TestReconstruct_Observer(t *testing.T) {
	var seen []int
	r, err := trace.New(2, 2, trace.WithObserver(func(f trace.Frame) {
		seen = append(seen, f.Index)
	}))
	require.NoError(t, err)

	r.Reconstruct([]trace.Step{{}, {}, {}})
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestSnapshots(t *testing.T) {
	r := newReconstructor(t)

	good := r.Reconstruct([]trace.Step{{v("map[0][0]", 1)}, {}})
	snaps, err := trace.Snapshots(good)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	bad := r.Reconstruct([]trace.Step{{}, {v("map[0][0]", "x")}})
	_, err = trace.Snapshots(bad)
	var pe *trace.TraceParseError
	assert.ErrorAs(t, err, &pe)
}

func TestInferDimensions(t *testing.T) {
	cols, rows, ok := trace.InferDimensions([]trace.Step{
		{v("map[0][0]", 0), v("map[6][2]", 0)},
		{v("drone_map[1][8]", 0), v("Survivor(40).pos.x", 40)},
	})
	assert.True(t, ok)
	assert.Equal(t, 7, cols)
	assert.Equal(t, 9, rows)

	_, _, ok = trace.InferDimensions([]trace.Step{{v("drone_1.x", 3)}})
	assert.False(t, ok)
}

func TestInferDimensions_IgnoresHugeIndices(t *testing.T) {
	_, _, ok := trace.InferDimensions([]trace.Step{{v("map[999999999][0]", 0)}})
	assert.False(t, ok)

	steps := []trace.Step{
		{v("map[2][1]", 0)},
		{v("map[999999999][0]", 0), v("drone_map[0][4096]", 1)},
	}
	cols, rows, ok := trace.InferDimensions(steps)
	require.True(t, ok)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, rows)

	r, err := trace.New(cols, rows)
	require.NoError(t, err)
	frames := r.Reconstruct(steps)
	assert.NoError(t, frames[0].Err)

	errs := parseErrors(t, frames[1].Err)
	require.Len(t, errs, 2)
	assert.Equal(t, "map[999999999][0]", errs[0].Variable)
	assert.Equal(t, "drone_map[0][4096]", errs[1].Variable)
	for _, pe := range errs {
		assert.Equal(t, 1, pe.Step)
		assert.Contains(t, pe.Error(), "outside the grid")
	}
}

func TestNew_RejectsOversizedGrid(t *testing.T) {
	_, err := trace.New(trace.MaxDimension+1, 1)
	assert.Error(t, err)
	_, err = trace.New(1, trace.MaxDimension+1)
	assert.Error(t, err)
	_, err = trace.New(trace.MaxDimension, 1)
	assert.NoError(t, err)
}
