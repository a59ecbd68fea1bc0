package tui

import "github.com/aretw0/rescuegrid/pkg/domain"

// Glyph is how one grid cell is drawn in a terminal: two characters plus
// optional colors as "#rrggbb" hex strings (empty means terminal default).
type Glyph struct {
	Text string
	FG   string
	BG   string
}

// DroneColor is the background used for cells carrying a drone.
const DroneColor = "#0e7490"

var glyphs = [domain.NumCellStates]Glyph{
	domain.Empty:                {Text: ". ", FG: "#6b7280"},
	domain.Fire:                 {Text: "##", FG: "#1f2937", BG: "#ff8b83"},
	domain.Exit:                 {Text: "[]", FG: "#1f2937", BG: "#ccfb73"},
	domain.FirstResponder:       {Text: "R ", FG: "#60a5fa"},
	domain.ResponderAssisting:   {Text: "Ra", FG: "#60a5fa"},
	domain.Survivor:             {Text: "S ", FG: "#fbbf24"},
	domain.ZeroResponseSurvivor: {Text: "Sz", FG: "#fbbf24"},
	domain.SurvivorInNeed:       {Text: "S!", FG: "#f87171"},
	domain.SurvivorAssisted:     {Text: "Sa", FG: "#34d399"},
}

// CellGlyph returns the glyph for a cell. A drone replaces the second
// character with '*' and takes over the background.
func CellGlyph(state domain.CellState, drone bool) Glyph {
	g := Glyph{Text: "??", FG: "#ffffff", BG: "#7f1d1d"}
	if state.Valid() {
		g = glyphs[state]
	}
	if drone {
		g.Text = g.Text[:1] + "*"
		g.BG = DroneColor
	}
	return g
}

// Legend lists every cell state with its glyph, in ordinal order.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, domain.NumCellStates+1)
	for i := 0; i < domain.NumCellStates; i++ {
		st := domain.CellState(i)
		out = append(out, LegendEntry{Label: st.String(), Glyph: CellGlyph(st, false)})
	}
	return append(out, LegendEntry{Label: "DRONE", Glyph: CellGlyph(domain.Empty, true)})
}

// LegendEntry pairs a label with its glyph.
type LegendEntry struct {
	Label string
	Glyph Glyph
}
