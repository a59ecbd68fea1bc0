package terminal

import (
	"context"

	"github.com/aretw0/rescuegrid/internal/presentation/tui"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/gdamore/tcell/v2"
)

type (
	drawFunc   func(ctx context.Context) error
	handleFunc func(ctx context.Context, ev tcell.Event) (bool, error)
)

// runLoop draws once, then hands every screen event to handle and redraws,
// until handle asks to quit, the screen is finalized or ctx is cancelled.
func runLoop(ctx context.Context, screen tcell.Screen, draw drawFunc, handle handleFunc) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	if err := draw(ctx); err != nil {
		return exitErr(ctx, err)
	}
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return nil
		}
		quit, err := handle(ctx, ev)
		if err != nil {
			return exitErr(ctx, err)
		}
		if quit {
			return nil
		}
		if err := draw(ctx); err != nil {
			return exitErr(ctx, err)
		}
	}
}

// exitErr treats errors caused by cancellation as a clean exit.
func exitErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// drawGrid paints snap below the status bar, CellWidth columns per cell.
func drawGrid(screen tcell.Screen, snap *domain.Snapshot) {
	for x := 0; x < snap.Cols(); x++ {
		for y := 0; y < snap.Rows(); y++ {
			c := domain.C(x, y)
			g := tui.CellGlyph(snap.Cell(c), snap.Drone(c))
			style := glyphStyle(g)
			for i, r := range g.Text {
				screen.SetContent(x*CellWidth+i, GridTop+y, r, nil, style)
			}
		}
	}
}

// drawStatusLine fills row 0 with text in reverse video.
func drawStatusLine(screen tcell.Screen, text string) {
	style := tcell.StyleDefault.Reverse(true)
	w, _ := screen.Size()
	col := 0
	for _, r := range text {
		if col >= w {
			break
		}
		screen.SetContent(col, 0, r, nil, style)
		col++
	}
	for ; col < w; col++ {
		screen.SetContent(col, 0, ' ', nil, style)
	}
}

func glyphStyle(g tui.Glyph) tcell.Style {
	style := tcell.StyleDefault
	if g.FG != "" {
		style = style.Foreground(tcell.GetColor(g.FG))
	}
	if g.BG != "" {
		style = style.Background(tcell.GetColor(g.BG))
	}
	return style
}
