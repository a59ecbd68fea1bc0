package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// GridRenderer draws snapshots as colored text, one line per grid row.
type GridRenderer struct {
	profile termenv.Profile
	axes    bool
}

// GridOption configures a GridRenderer.
type GridOption func(*GridRenderer)

// WithAxes prints column and row indices around the grid.
func WithAxes() GridOption {
	return func(r *GridRenderer) {
		r.axes = true
	}
}

// NewGridRenderer creates a renderer for the given color profile.
// termenv.Ascii yields plain text.
func NewGridRenderer(profile termenv.Profile, opts ...GridOption) *GridRenderer {
	r := &GridRenderer{profile: profile}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProfileFor picks the color profile for f: the detected profile for a
// terminal, plain text otherwise.
func ProfileFor(f *os.File) termenv.Profile {
	if !IsTerminal(f) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).Profile
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Render returns the snapshot as text. Row y is line y; column x spans
// characters 2x and 2x+1.
func (r *GridRenderer) Render(snap *domain.Snapshot) string {
	var b strings.Builder
	cols, rows := snap.Cols(), snap.Rows()

	if r.axes {
		b.WriteString("    ")
		for x := 0; x < cols; x++ {
			fmt.Fprintf(&b, "%-2d", x%100)
		}
		b.WriteByte('\n')
	}
	for y := 0; y < rows; y++ {
		if r.axes {
			fmt.Fprintf(&b, "%3d ", y)
		}
		for x := 0; x < cols; x++ {
			c := domain.C(x, y)
			b.WriteString(r.styled(CellGlyph(snap.Cell(c), snap.Drone(c))))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Legend renders the glyph key on one line.
func (r *GridRenderer) Legend() string {
	parts := make([]string, 0, domain.NumCellStates+1)
	for _, e := range Legend() {
		parts = append(parts, r.styled(e.Glyph)+" "+e.Label)
	}
	return strings.Join(parts, "  ")
}

func (r *GridRenderer) styled(g Glyph) string {
	s := r.profile.String(g.Text)
	if g.FG != "" {
		s = s.Foreground(r.profile.Color(g.FG))
	}
	if g.BG != "" {
		s = s.Background(r.profile.Color(g.BG))
	}
	return s.String()
}
