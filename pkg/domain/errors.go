package domain

import "errors"

// ErrScenarioNotFound is returned when a scenario name cannot be found in the store.
var ErrScenarioNotFound = errors.New("scenario not found")

// ErrInvalidCellState is returned when an ordinal or name does not map to a CellState.
var ErrInvalidCellState = errors.New("invalid cell state")

// ErrDimensionMismatch is returned when two snapshots (or a snapshot and a session) disagree on grid size.
var ErrDimensionMismatch = errors.New("grid dimension mismatch")

// ErrOutOfBounds is returned when a coordinate lies outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// ErrInvalidSnapshot is returned when a snapshot violates its structural invariants.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ErrInvalidScenarioName is returned for scenario names that cannot be used as store keys.
var ErrInvalidScenarioName = errors.New("invalid scenario name")
