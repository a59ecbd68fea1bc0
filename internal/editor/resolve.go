package editor

import (
	"fmt"

	"github.com/aretw0/rescuegrid/pkg/domain"
)

// EffectKind is the class of change a gesture applies.
type EffectKind int

const (
	// EffectPaint stamps Effect.Paint into every cell.
	EffectPaint EffectKind = iota
	// EffectClear empties cells and removes drones.
	EffectClear
	// EffectSetDrone places a drone on every cell.
	EffectSetDrone
	// EffectClearDrone removes the drone from every cell.
	EffectClearDrone
)

func (k EffectKind) String() string {
	switch k {
	case EffectPaint:
		return "paint"
	case EffectClear:
		return "clear"
	case EffectSetDrone:
		return "set_drone"
	case EffectClearDrone:
		return "clear_drone"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// Effect is the single tool resolved for a gesture. Paint is only
// meaningful for EffectPaint.
type Effect struct {
	Kind  EffectKind
	Paint domain.CellState
}

func (e Effect) String() string {
	if e.Kind == EffectPaint {
		return "paint " + e.Paint.String()
	}
	return e.Kind.String()
}

// Resolve picks the effective tool for a gesture from the anchor cell.
// The current position only matters to tell a click from a drag: a gesture
// released exactly on its anchor is a click even if it wandered in between.
//
// Rules, in order: middle button clears; shift toggles the drone at the
// anchor; a drag or a non-cycle anchor cell repeats last; a click on a cycle
// cell steps forward (left) or backward (right) from that cell's tool.
func Resolve(snap *domain.Snapshot, anchor, current domain.Coord, button Button, mods Modifiers, last domain.CellState, cycle domain.ToolCycle) Effect {
	if button == ButtonMiddle {
		return Effect{Kind: EffectClear}
	}

	if mods.Has(ModShift) {
		if snap.Drone(anchor) {
			return Effect{Kind: EffectClearDrone}
		}
		return Effect{Kind: EffectSetDrone}
	}

	cell := snap.Cell(anchor)
	if anchor != current || !cycle.Contains(cell) {
		return Effect{Kind: EffectPaint, Paint: last}
	}

	switch button {
	case ButtonLeft:
		return Effect{Kind: EffectPaint, Paint: cycle.Next(cell)}
	case ButtonRight:
		return Effect{Kind: EffectPaint, Paint: cycle.Previous(cell)}
	default:
		return Effect{Kind: EffectPaint, Paint: last}
	}
}

// Apply writes the effect to every cell of r in snap. Coordinates of r are
// expected to be inside snap; cells outside are skipped.
func Apply(snap *domain.Snapshot, r Rect, e Effect) {
	r.Each(func(c domain.Coord) {
		if !snap.In(c) {
			return
		}
		switch e.Kind {
		case EffectClear:
			snap.Cells[c.X][c.Y] = domain.Empty
			snap.Drones[c.X][c.Y] = false
		case EffectSetDrone:
			snap.Drones[c.X][c.Y] = true
		case EffectClearDrone:
			snap.Drones[c.X][c.Y] = false
		case EffectPaint:
			snap.Cells[c.X][c.Y] = e.Paint
		}
	})
}

// NextPaintTool returns the remembered paint tool after e is committed.
func NextPaintTool(e Effect, last domain.CellState, cycle domain.ToolCycle) domain.CellState {
	switch e.Kind {
	case EffectClear:
		return cycle.First()
	case EffectPaint:
		return e.Paint
	default:
		return last
	}
}
