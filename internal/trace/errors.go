package trace

import "fmt"

// TraceParseError reports a recognized trace variable that could not be
// turned into snapshot content. It is scoped to a single step.
type TraceParseError struct {
	Step     int
	Variable string
	Raw      any
	Reason   string
}

func (e *TraceParseError) Error() string {
	if e.Raw == nil {
		return fmt.Sprintf("trace step %d: %s: %s", e.Step, e.Variable, e.Reason)
	}
	return fmt.Sprintf("trace step %d: %s=%v: %s", e.Step, e.Variable, e.Raw, e.Reason)
}

const (
	reasonNotInteger   = "value is not an integer"
	reasonBadCellState = "value is not a cell state ordinal (0..8)"
	reasonOutOfBounds  = "coordinate outside the grid"
	reasonMissing      = "variable missing from step"
	reasonBadDroneID   = "drone ids are 1-based"
)
