package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewSnapshot(t *testing.T) {
	s := NewSnapshot(10, 7)
	if s.Cols() != 10 || s.Rows() != 7 {
		t.Fatalf("dims = %dx%d, want 10x7", s.Cols(), s.Rows())
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if err := s.ValidateEntities(); err != nil {
		t.Fatalf("ValidateEntities() = %v", err)
	}
	if s.Cell(C(9, 6)) != Empty || s.Drone(C(9, 6)) {
		t.Error("fresh snapshot is not empty")
	}
}

func TestSnapshot_OutOfBounds(t *testing.T) {
	s := NewSnapshot(3, 3)
	if err := s.SetCell(C(3, 0), Fire); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetCell out of range err = %v", err)
	}
	if err := s.SetDrone(C(0, -1), true); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetDrone out of range err = %v", err)
	}
	if s.Cell(C(-1, 0)) != Empty {
		t.Error("out of range read should be EMPTY")
	}
}

func TestSnapshot_CloneIsDetached(t *testing.T) {
	s := NewSnapshot(4, 4)
	_ = s.SetCell(C(1, 1), FirstResponder)
	s.FirstResponders = []Coord{C(1, 1)}

	c := s.Clone()
	if !c.Equal(s) {
		t.Fatal("clone differs from source")
	}

	_ = c.SetCell(C(2, 2), Fire)
	_ = c.SetDrone(C(2, 2), true)
	c.FirstResponders[0] = C(3, 3)

	if s.Cell(C(2, 2)) != Empty || s.Drone(C(2, 2)) {
		t.Error("mutating the clone changed the source grid")
	}
	if s.FirstResponders[0] != C(1, 1) {
		t.Error("mutating the clone changed the source entity list")
	}
}

func TestSnapshot_JSONWireSchema(t *testing.T) {
	s := NewSnapshot(2, 3)
	_ = s.SetCell(C(0, 1), Fire)
	_ = s.SetCell(C(1, 2), Survivor)
	_ = s.SetDrone(C(1, 0), true)
	s.Survivors = []Coord{C(1, 2)}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"cells":            "[[0,1,0],[0,0,4]]",
		"drones":           "[[0,0,0],[1,0,0]]",
		"first_responders": "[]",
		"survivors":        "[[1,2]]",
	}
	for key, w := range want {
		if got := string(raw[key]); got != w {
			t.Errorf("%s = %s, want %s", key, got, w)
		}
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(s) {
		t.Error("decoded snapshot differs from source")
	}
}

func TestSnapshot_UnmarshalRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad ordinal":    `{"cells":[[0,9]],"drones":[[0,0]],"first_responders":[],"survivors":[]}`,
		"bad drone flag": `{"cells":[[0,0]],"drones":[[0,2]],"first_responders":[],"survivors":[]}`,
		"ragged cells":   `{"cells":[[0,0],[0]],"drones":[[0,0],[0,0]],"first_responders":[],"survivors":[]}`,
		"drones shape":   `{"cells":[[0,0]],"drones":[[0]],"first_responders":[],"survivors":[]}`,
		"entity range":   `{"cells":[[0,0]],"drones":[[0,0]],"first_responders":[[0,5]],"survivors":[]}`,
		"empty grid":     `{"cells":[],"drones":[],"first_responders":[],"survivors":[]}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			var s Snapshot
			if err := json.NewDecoder(strings.NewReader(in)).Decode(&s); err == nil {
				t.Errorf("expected error for %s", in)
			}
		})
	}
}

func TestSnapshot_ValidateEntities(t *testing.T) {
	s := NewSnapshot(3, 3)
	_ = s.SetCell(C(0, 0), FirstResponder)
	_ = s.SetCell(C(1, 1), ResponderAssisting)
	_ = s.SetCell(C(2, 2), SurvivorInNeed)

	if s.CountResponders() != 2 || s.CountSurvivors() != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", s.CountResponders(), s.CountSurvivors())
	}
	if err := s.ValidateEntities(); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("ValidateEntities() = %v, want ErrInvalidSnapshot", err)
	}

	s.FirstResponders = []Coord{C(1, 1), C(0, 0)}
	s.Survivors = []Coord{C(2, 2)}
	if err := s.ValidateEntities(); err != nil {
		t.Errorf("ValidateEntities() = %v", err)
	}
}

func TestSnapshot_ReconcileEntities(t *testing.T) {
	s := NewSnapshot(4, 4)
	_ = s.SetCell(C(3, 0), FirstResponder)
	_ = s.SetCell(C(0, 3), FirstResponder)
	s.FirstResponders = []Coord{C(3, 0), C(0, 3)}

	// Remove the first responder at index 0 and add a new one.
	_ = s.SetCell(C(3, 0), Fire)
	_ = s.SetCell(C(1, 1), ResponderAssisting)
	_ = s.SetCell(C(2, 2), Survivor)

	s.ReconcileEntities()

	wantResponders := []Coord{C(0, 3), C(1, 1)}
	if !equalCoords(s.FirstResponders, wantResponders) {
		t.Errorf("FirstResponders = %v, want %v", s.FirstResponders, wantResponders)
	}
	if !equalCoords(s.Survivors, []Coord{C(2, 2)}) {
		t.Errorf("Survivors = %v", s.Survivors)
	}
	if err := s.ValidateEntities(); err != nil {
		t.Errorf("ValidateEntities() after reconcile = %v", err)
	}
}

func TestValidateScenarioName(t *testing.T) {
	for _, ok := range []string{"drill", "floor-2", "a.b"} {
		if err := ValidateScenarioName(ok); err != nil {
			t.Errorf("ValidateScenarioName(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "  ", ".", "..", "a/b", `a\b`} {
		if err := ValidateScenarioName(bad); !errors.Is(err, ErrInvalidScenarioName) {
			t.Errorf("ValidateScenarioName(%q) = %v, want ErrInvalidScenarioName", bad, err)
		}
	}
}
