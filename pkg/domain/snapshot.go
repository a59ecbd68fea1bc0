package domain

import (
	"encoding/json"
	"fmt"
)

// Coord is a grid position. X indexes columns, Y indexes rows.
type Coord struct {
	X int
	Y int
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// MarshalJSON encodes the coordinate as a two-element array [x, y].
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Y})
}

// UnmarshalJSON decodes a two-element array [x, y].
func (c *Coord) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate: want [x, y], got %d elements", len(pair))
	}
	c.X, c.Y = pair[0], pair[1]
	return nil
}

// Snapshot is one fully specified grid state: cell contents, the drone
// overlay, and the index-stable entity position lists.
//
// Cells and Drones are indexed [x][y]. A cell may hold any CellState and
// carry a drone at the same time.
type Snapshot struct {
	Cells           [][]CellState
	Drones          [][]bool
	FirstResponders []Coord
	Survivors       []Coord
}

// NewSnapshot creates an empty cols x rows snapshot.
func NewSnapshot(cols, rows int) *Snapshot {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	s := &Snapshot{
		Cells:           make([][]CellState, cols),
		Drones:          make([][]bool, cols),
		FirstResponders: []Coord{},
		Survivors:       []Coord{},
	}
	for x := 0; x < cols; x++ {
		s.Cells[x] = make([]CellState, rows)
		s.Drones[x] = make([]bool, rows)
	}
	return s
}

// Cols returns N_COLS.
func (s *Snapshot) Cols() int {
	return len(s.Cells)
}

// Rows returns N_ROWS.
func (s *Snapshot) Rows() int {
	if len(s.Cells) == 0 {
		return 0
	}
	return len(s.Cells[0])
}

// In reports whether c lies inside the grid.
func (s *Snapshot) In(c Coord) bool {
	return c.X >= 0 && c.X < s.Cols() && c.Y >= 0 && c.Y < s.Rows()
}

// Cell returns the state at c. Out-of-range coordinates read as Empty.
func (s *Snapshot) Cell(c Coord) CellState {
	if !s.In(c) {
		return Empty
	}
	return s.Cells[c.X][c.Y]
}

// SetCell writes the state at c.
func (s *Snapshot) SetCell(c Coord, state CellState) error {
	if !s.In(c) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	s.Cells[c.X][c.Y] = state
	return nil
}

// Drone reports whether a drone is present at c.
func (s *Snapshot) Drone(c Coord) bool {
	if !s.In(c) {
		return false
	}
	return s.Drones[c.X][c.Y]
}

// SetDrone writes the drone overlay at c.
func (s *Snapshot) SetDrone(c Coord, present bool) error {
	if !s.In(c) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, c)
	}
	s.Drones[c.X][c.Y] = present
	return nil
}

// SameSize reports whether both snapshots have identical dimensions.
func (s *Snapshot) SameSize(other *Snapshot) bool {
	return other != nil && s.Cols() == other.Cols() && s.Rows() == other.Rows()
}

// Clone returns a deep copy that shares no memory with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Cells:           make([][]CellState, len(s.Cells)),
		Drones:          make([][]bool, len(s.Drones)),
		FirstResponders: append([]Coord{}, s.FirstResponders...),
		Survivors:       append([]Coord{}, s.Survivors...),
	}
	for x := range s.Cells {
		c.Cells[x] = append([]CellState(nil), s.Cells[x]...)
	}
	for x := range s.Drones {
		c.Drones[x] = append([]bool(nil), s.Drones[x]...)
	}
	return c
}

// Equal reports whether two snapshots hold identical content.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if !s.SameSize(other) {
		return false
	}
	for x := range s.Cells {
		for y := range s.Cells[x] {
			if s.Cells[x][y] != other.Cells[x][y] || s.Drones[x][y] != other.Drones[x][y] {
				return false
			}
		}
	}
	return equalCoords(s.FirstResponders, other.FirstResponders) &&
		equalCoords(s.Survivors, other.Survivors)
}

func equalCoords(a, b []Coord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CountResponders counts cells holding a first responder (FIRST_RESPONDER or RESPONDER_ASSISTING).
func (s *Snapshot) CountResponders() int {
	return s.count(CellState.IsResponder)
}

// CountSurvivors counts cells holding a survivor in any of its four states.
func (s *Snapshot) CountSurvivors() int {
	return s.count(CellState.IsSurvivor)
}

func (s *Snapshot) count(match func(CellState) bool) int {
	n := 0
	for x := range s.Cells {
		for _, st := range s.Cells[x] {
			if match(st) {
				n++
			}
		}
	}
	return n
}

// Validate checks the structural invariants: a rectangular grid, a drone
// overlay of the same shape, known cell states and in-range entity positions.
func (s *Snapshot) Validate() error {
	cols, rows := s.Cols(), s.Rows()
	if cols == 0 || rows == 0 {
		return fmt.Errorf("%w: empty grid", ErrInvalidSnapshot)
	}
	if len(s.Drones) != cols {
		return fmt.Errorf("%w: drones has %d columns, cells has %d", ErrInvalidSnapshot, len(s.Drones), cols)
	}
	for x := 0; x < cols; x++ {
		if len(s.Cells[x]) != rows {
			return fmt.Errorf("%w: cells column %d has %d rows, want %d", ErrInvalidSnapshot, x, len(s.Cells[x]), rows)
		}
		if len(s.Drones[x]) != rows {
			return fmt.Errorf("%w: drones column %d has %d rows, want %d", ErrInvalidSnapshot, x, len(s.Drones[x]), rows)
		}
		for y, st := range s.Cells[x] {
			if !st.Valid() {
				return fmt.Errorf("%w: %s at %s", ErrInvalidCellState, st, C(x, y))
			}
		}
	}
	for i, c := range s.FirstResponders {
		if !s.In(c) {
			return fmt.Errorf("%w: first responder %d at %s", ErrOutOfBounds, i, c)
		}
	}
	for i, c := range s.Survivors {
		if !s.In(c) {
			return fmt.Errorf("%w: survivor %d at %s", ErrOutOfBounds, i, c)
		}
	}
	return nil
}

// ValidateEntities checks that the entity lists have one entry per
// responder/survivor cell. Trace-derived snapshots always satisfy this.
func (s *Snapshot) ValidateEntities() error {
	if got, want := len(s.FirstResponders), s.CountResponders(); got != want {
		return fmt.Errorf("%w: %d first responder positions for %d responder cells", ErrInvalidSnapshot, got, want)
	}
	if got, want := len(s.Survivors), s.CountSurvivors(); got != want {
		return fmt.Errorf("%w: %d survivor positions for %d survivor cells", ErrInvalidSnapshot, got, want)
	}
	return nil
}

// ReconcileEntities rebuilds the entity lists after cells were edited.
// Entries whose cell still holds the same kind of entity keep their index;
// entries whose cell lost it are dropped; newly populated cells are appended
// in column-major scan order.
func (s *Snapshot) ReconcileEntities() {
	s.FirstResponders = reconcile(s, s.FirstResponders, CellState.IsResponder)
	s.Survivors = reconcile(s, s.Survivors, CellState.IsSurvivor)
}

func reconcile(s *Snapshot, current []Coord, match func(CellState) bool) []Coord {
	seen := make(map[Coord]bool, len(current))
	out := make([]Coord, 0, len(current))
	for _, c := range current {
		if s.In(c) && match(s.Cells[c.X][c.Y]) && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for x := range s.Cells {
		for y, st := range s.Cells[x] {
			c := C(x, y)
			if match(st) && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// wireSnapshot is the persisted/transported form: drones are 0|1 integers.
type wireSnapshot struct {
	Cells           [][]CellState `json:"cells"`
	Drones          [][]int       `json:"drones"`
	FirstResponders []Coord       `json:"first_responders"`
	Survivors       []Coord       `json:"survivors"`
}

// MarshalJSON encodes the snapshot in the wire schema.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	w := wireSnapshot{
		Cells:           s.Cells,
		Drones:          make([][]int, len(s.Drones)),
		FirstResponders: s.FirstResponders,
		Survivors:       s.Survivors,
	}
	for x, col := range s.Drones {
		w.Drones[x] = make([]int, len(col))
		for y, d := range col {
			if d {
				w.Drones[x][y] = 1
			}
		}
	}
	if w.FirstResponders == nil {
		w.FirstResponders = []Coord{}
	}
	if w.Survivors == nil {
		w.Survivors = []Coord{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire schema and validates the result.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	out := Snapshot{
		Cells:           w.Cells,
		Drones:          make([][]bool, len(w.Drones)),
		FirstResponders: w.FirstResponders,
		Survivors:       w.Survivors,
	}
	for x, col := range w.Drones {
		out.Drones[x] = make([]bool, len(col))
		for y, d := range col {
			switch d {
			case 0:
			case 1:
				out.Drones[x][y] = true
			default:
				return fmt.Errorf("%w: drone flag %d at %s", ErrInvalidSnapshot, d, C(x, y))
			}
		}
	}
	if out.FirstResponders == nil {
		out.FirstResponders = []Coord{}
	}
	if out.Survivors == nil {
		out.Survivors = []Coord{}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*s = out
	return nil
}
