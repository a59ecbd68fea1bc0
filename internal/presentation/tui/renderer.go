package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/rescuegrid/internal/replay"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// When styled is false the notty style is used, suitable for pipes.
func NewRenderer(styled bool) (func(string) (string, error), error) {
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// Summary builds a markdown report of a replay: one table row per trace
// step with entity counts, plus the errors of failed steps.
func Summary(title string, entries []replay.Entry, failed []error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d steps reconstructed, %d failed.\n\n", countOK(entries), len(failed))

	b.WriteString("| step | fire | exits | responders | survivors | drones |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|\n")
	for _, e := range entries {
		if e.Err != nil {
			fmt.Fprintf(&b, "| %d | - | - | - | - | - |\n", e.Step)
			continue
		}
		s := e.Snapshot
		fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d |\n",
			e.Step,
			countCells(s, domain.Fire),
			countCells(s, domain.Exit),
			len(s.FirstResponders),
			len(s.Survivors),
			countDrones(s),
		)
	}

	if len(failed) > 0 {
		b.WriteString("\n## Failed steps\n\n")
		for _, err := range failed {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(&b, "- `%s`\n", line)
			}
		}
	}
	return b.String()
}

func countOK(entries []replay.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Err == nil {
			n++
		}
	}
	return n
}

func countCells(s *domain.Snapshot, st domain.CellState) int {
	n := 0
	for x := range s.Cells {
		for _, c := range s.Cells[x] {
			if c == st {
				n++
			}
		}
	}
	return n
}

func countDrones(s *domain.Snapshot) int {
	n := 0
	for x := range s.Drones {
		for _, d := range s.Drones[x] {
			if d {
				n++
			}
		}
	}
	return n
}
