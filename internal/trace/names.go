package trace

import (
	"regexp"
	"strconv"
	"strings"
)

// varKind classifies a trace variable name.
type varKind int

const (
	kindUnknown varKind = iota
	kindCell            // map[x][y]
	kindDroneCell       // drone_map[x][y]
	kindDroneAxis       // drone_<id>.x / drone_<id>.y
	kindEntityAxis      // FirstResponder(<id>).pos.x / Survivor(<id>).pos.y
)

// Entity kinds as they appear in the trace namespace.
const (
	EntityFirstResponder = "FirstResponder"
	EntitySurvivor       = "Survivor"
)

var (
	cellPattern   = regexp.MustCompile(`^map\[(\d+)\]\[(\d+)\]$`)
	dronePattern  = regexp.MustCompile(`^drone_map\[(\d+)\]\[(\d+)\]$`)
	dronePosition = regexp.MustCompile(`^drone_(\d+)\.([xy])$`)
	entityPattern = regexp.MustCompile(`^(FirstResponder|Survivor)\((\d+)\)\.pos\.([xy])$`)
)

// varName is a parsed trace variable name.
type varName struct {
	kind   varKind
	x, y   int    // grid indices for kindCell / kindDroneCell
	id     int    // drone or entity id
	axis   byte   // 'x' or 'y'
	entity string // EntityFirstResponder or EntitySurvivor
}

// parseName classifies a variable name. Unrecognized names yield kindUnknown
// and are ignored by the reconstructor.
func parseName(name string) varName {
	name = strings.TrimSpace(name)
	if m := cellPattern.FindStringSubmatch(name); m != nil {
		return varName{kind: kindCell, x: atoi(m[1]), y: atoi(m[2])}
	}
	if m := dronePattern.FindStringSubmatch(name); m != nil {
		return varName{kind: kindDroneCell, x: atoi(m[1]), y: atoi(m[2])}
	}
	if m := dronePosition.FindStringSubmatch(name); m != nil {
		return varName{kind: kindDroneAxis, id: atoi(m[1]), axis: m[2][0]}
	}
	if m := entityPattern.FindStringSubmatch(name); m != nil {
		return varName{kind: kindEntityAxis, entity: m[1], id: atoi(m[2]), axis: m[3][0]}
	}
	return varName{kind: kindUnknown}
}

// atoi parses a digit run already matched by a pattern. Overflowing values
// become -1, which every bounds check rejects.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// EntityVariable returns the trace variable name for one coordinate of the
// id-th entity, e.g. EntityVariable("Survivor", 2, 'x') == "Survivor(2).pos.x".
func EntityVariable(entity string, id int, axis byte) string {
	return entity + "(" + strconv.Itoa(id) + ").pos." + string(axis)
}
