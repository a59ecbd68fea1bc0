package domain

// ToolCycle is the fixed, ordered list of paintable cell states that a
// click steps through. It carries no mutable state.
type ToolCycle []CellState

// DefaultToolCycle is FIRE -> EXIT -> FIRST_RESPONDER -> SURVIVOR, wrapping.
var DefaultToolCycle = ToolCycle{Fire, Exit, FirstResponder, Survivor}

// First returns the entry a fresh session (and every CLEAR) starts from.
func (t ToolCycle) First() CellState {
	if len(t) == 0 {
		return Empty
	}
	return t[0]
}

// Contains reports whether state is one of the cycle entries.
func (t ToolCycle) Contains(state CellState) bool {
	return t.index(state) >= 0
}

// Next returns the entry after tool, wrapping to the start.
// A tool outside the cycle maps to the first entry.
func (t ToolCycle) Next(tool CellState) CellState {
	if len(t) == 0 {
		return tool
	}
	i := t.index(tool)
	if i < 0 {
		return t[0]
	}
	return t[(i+1)%len(t)]
}

// Previous returns the entry before tool, wrapping to the end.
// A tool outside the cycle maps to the last entry.
func (t ToolCycle) Previous(tool CellState) CellState {
	if len(t) == 0 {
		return tool
	}
	i := t.index(tool)
	if i < 0 {
		return t[len(t)-1]
	}
	return t[(i-1+len(t))%len(t)]
}

func (t ToolCycle) index(state CellState) int {
	for i, s := range t {
		if s == state {
			return i
		}
	}
	return -1
}
