package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CellState is what a single grid cell contains.
// The ordinal values are part of the wire contract and must not be renumbered.
type CellState int

const (
	Empty                CellState = 0
	Fire                 CellState = 1
	Exit                 CellState = 2
	FirstResponder       CellState = 3
	Survivor             CellState = 4
	ZeroResponseSurvivor CellState = 5
	SurvivorInNeed       CellState = 6
	SurvivorAssisted     CellState = 7
	ResponderAssisting   CellState = 8
)

// NumCellStates is the size of the closed CellState enumeration.
const NumCellStates = 9

var cellStateNames = [NumCellStates]string{
	Empty:                "EMPTY",
	Fire:                 "FIRE",
	Exit:                 "EXIT",
	FirstResponder:       "FIRST_RESPONDER",
	Survivor:             "SURVIVOR",
	ZeroResponseSurvivor: "ZERO_RESPONSE_SURVIVOR",
	SurvivorInNeed:       "SURVIVOR_IN_NEED",
	SurvivorAssisted:     "SURVIVOR_ASSISTED",
	ResponderAssisting:   "RESPONDER_ASSISTING",
}

// Valid reports whether s is one of the nine known states.
func (s CellState) Valid() bool {
	return s >= Empty && s <= ResponderAssisting
}

func (s CellState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("CellState(%d)", int(s))
	}
	return cellStateNames[s]
}

// IsResponder reports whether the cell holds a first responder in any activity state.
func (s CellState) IsResponder() bool {
	return s == FirstResponder || s == ResponderAssisting
}

// IsSurvivor reports whether the cell holds a survivor in any activity state.
func (s CellState) IsSurvivor() bool {
	switch s {
	case Survivor, ZeroResponseSurvivor, SurvivorInNeed, SurvivorAssisted:
		return true
	}
	return false
}

// CellStateFromOrdinal converts a wire ordinal into a CellState.
func CellStateFromOrdinal(v int) (CellState, error) {
	s := CellState(v)
	if !s.Valid() {
		return Empty, fmt.Errorf("%w: ordinal %d", ErrInvalidCellState, v)
	}
	return s, nil
}

// ParseCellState parses a state name such as "FIRE" or "first_responder".
func ParseCellState(name string) (CellState, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range cellStateNames {
		if n == upper {
			return CellState(i), nil
		}
	}
	return Empty, fmt.Errorf("%w: name %q", ErrInvalidCellState, name)
}

// MarshalJSON encodes the wire ordinal.
func (s CellState) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: ordinal %d", ErrInvalidCellState, int(s))
	}
	return json.Marshal(int(s))
}

// UnmarshalJSON decodes a wire ordinal, rejecting anything outside 0..8.
func (s *CellState) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCellState, string(data))
	}
	cs, err := CellStateFromOrdinal(v)
	if err != nil {
		return err
	}
	*s = cs
	return nil
}
