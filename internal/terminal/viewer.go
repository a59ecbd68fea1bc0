package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/replay"
	"github.com/gdamore/tcell/v2"
)

// Viewer shows the entries of a replay player one at a time.
// Left/Right (or p/n, space) step, Home/End jump to the ends.
type Viewer struct {
	screen tcell.Screen
	player *replay.Player
	title  string
	logger *slog.Logger
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithViewerTitle sets the label shown at the left of the status bar.
func WithViewerTitle(title string) ViewerOption {
	return func(v *Viewer) {
		v.title = title
	}
}

// WithViewerLogger configures a logger.
func WithViewerLogger(logger *slog.Logger) ViewerOption {
	return func(v *Viewer) {
		v.logger = logger
	}
}

// NewViewer creates a Viewer positioned wherever player currently is. The
// screen must already be initialized.
func NewViewer(screen tcell.Screen, player *replay.Player, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		screen: screen,
		player: player,
		title:  "rescuegrid",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run shows entries until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	if v.player.Len() == 0 {
		return replay.ErrEmpty
	}
	return runLoop(ctx, v.screen, v.Draw, v.HandleEvent)
}

// HandleEvent applies one screen event. It reports whether the viewer
// should quit.
func (v *Viewer) HandleEvent(_ context.Context, ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true, nil
		case tcell.KeyLeft:
			v.player.Prev()
		case tcell.KeyRight:
			v.player.Next()
		case tcell.KeyHome:
			return false, v.player.First()
		case tcell.KeyEnd:
			return false, v.player.Last()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true, nil
			case 'n', ' ':
				v.player.Next()
			case 'p':
				v.player.Prev()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	v.logger.Debug("viewer position", "position", v.player.Position(), "step", v.player.Step())
	return false, nil
}

// Draw repaints the status bar and the current entry.
func (v *Viewer) Draw(context.Context) error {
	e, err := v.player.Current()
	if err != nil {
		return err
	}

	text := fmt.Sprintf(" %s | step %d (%d/%d)", v.title, e.Step, v.player.Position()+1, v.player.Len())
	if e.Err != nil {
		text += " | failed: " + strings.ReplaceAll(e.Err.Error(), "\n", "; ")
	}
	text += " | ←/→ step  home/end  q quit"

	v.screen.Clear()
	drawStatusLine(v.screen, text)
	drawGrid(v.screen, e.Snapshot)
	v.screen.Show()
	return nil
}
