package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on a visualizer.
type SnapshotDiff struct {
	// Full is set when the receiver cannot apply a delta (initial load or resize).
	Full *Snapshot `json:"full,omitempty"`

	Cells  []CellChange  `json:"cells,omitempty"`
	Drones []DroneChange `json:"drones,omitempty"`

	// Entity lists are sent whole when they change and are null otherwise.
	FirstResponders []Coord `json:"first_responders"`
	Survivors       []Coord `json:"survivors"`
}

// CellChange is one cell whose state changed.
type CellChange struct {
	X     int       `json:"x"`
	Y     int       `json:"y"`
	State CellState `json:"state"`
}

// DroneChange is one cell whose drone flag changed.
type DroneChange struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Present bool `json:"present"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil or the dimensions differ, the diff carries the whole newSnap.
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil || !oldSnap.SameSize(newSnap) {
		return &SnapshotDiff{Full: newSnap.Clone()}
	}

	diff := &SnapshotDiff{}
	for x := range newSnap.Cells {
		for y := range newSnap.Cells[x] {
			if oldSnap.Cells[x][y] != newSnap.Cells[x][y] {
				diff.Cells = append(diff.Cells, CellChange{X: x, Y: y, State: newSnap.Cells[x][y]})
			}
			if oldSnap.Drones[x][y] != newSnap.Drones[x][y] {
				diff.Drones = append(diff.Drones, DroneChange{X: x, Y: y, Present: newSnap.Drones[x][y]})
			}
		}
	}
	if !equalCoords(oldSnap.FirstResponders, newSnap.FirstResponders) {
		diff.FirstResponders = append([]Coord{}, newSnap.FirstResponders...)
	}
	if !equalCoords(oldSnap.Survivors, newSnap.Survivors) {
		diff.Survivors = append([]Coord{}, newSnap.Survivors...)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Full == nil &&
		len(d.Cells) == 0 &&
		len(d.Drones) == 0 &&
		d.FirstResponders == nil &&
		d.Survivors == nil
}

// Apply patches base in place with the diff. A Full diff replaces base entirely.
func (d *SnapshotDiff) Apply(base *Snapshot) *Snapshot {
	if d == nil {
		return base
	}
	if d.Full != nil {
		return d.Full.Clone()
	}
	for _, c := range d.Cells {
		_ = base.SetCell(C(c.X, c.Y), c.State)
	}
	for _, c := range d.Drones {
		_ = base.SetDrone(C(c.X, c.Y), c.Present)
	}
	if d.FirstResponders != nil {
		base.FirstResponders = append([]Coord{}, d.FirstResponders...)
	}
	if d.Survivors != nil {
		base.Survivors = append([]Coord{}, d.Survivors...)
	}
	return base
}
