package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the rescuegrid banner using the given profile.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text, color string
	}{
		{`  _ __ ___  ___  ___ _   _  ___  __ _ _ __(_) __| |`, "#ff8b83"},
		{` | '__/ _ \/ __|/ __| | | |/ _ \/ _' | '__| |/ _' |`, "#fca47c"},
		{` | | |  __/\__ \ (__| |_| |  __/ (_| | |  | | (_| |`, "#fbbf24"},
		{` |_|  \___||___/\___|\__,_|\___|\__, |_|  |_|\__,_|`, "#d9f99d"},
		{`                                |___/              `, "#ccfb73"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
