package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/rescuegrid/internal/logging"
	"github.com/aretw0/rescuegrid/internal/metrics"
	"github.com/aretw0/rescuegrid/internal/presentation/tui"
	"github.com/aretw0/rescuegrid/internal/replay"
	"github.com/aretw0/rescuegrid/internal/terminal"
	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
)

// ReplayOptions configures RunReplay.
type ReplayOptions struct {
	TracePath string
	// Cols and Rows override the dimensions inferred from the trace.
	Cols, Rows int
	// Step selects a single trace step; negative replays all of them.
	Step     int
	Summary  bool
	Policy   string
	Interval time.Duration

	// Interactive opens a step viewer on Screen instead of printing.
	Interactive bool
	Screen      tcell.Screen

	Out     io.Writer
	Profile termenv.Profile
	// Styled enables glamour's terminal styles for the summary.
	Styled  bool
	Logger  *slog.Logger
	Metrics *metrics.Collectors
	// MetricsOut, when set, receives the reconstruction counters in the
	// prometheus text format.
	MetricsOut string
}

// RunReplay reconstructs a trace file and prints its steps.
func RunReplay(ctx context.Context, opts ReplayOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	policy, err := replay.ParsePolicy(opts.Policy)
	if err != nil {
		return err
	}

	steps, err := trace.Load(opts.TracePath)
	if err != nil {
		return err
	}

	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 || rows <= 0 {
		ic, ir, ok := trace.InferDimensions(steps)
		if !ok {
			return fmt.Errorf("cannot infer grid dimensions from %s: pass --cols and --rows", opts.TracePath)
		}
		if cols <= 0 {
			cols = ic
		}
		if rows <= 0 {
			rows = ir
		}
	}
	logger.Debug("replaying trace", "path", opts.TracePath, "steps", len(steps), "cols", cols, "rows", rows)

	collectors := opts.Metrics
	if collectors == nil && opts.MetricsOut != "" {
		if collectors, err = metrics.New(prometheus.NewRegistry()); err != nil {
			return err
		}
	}

	recOpts := []trace.Option{trace.WithLogger(logger)}
	if collectors != nil {
		recOpts = append(recOpts, trace.WithObserver(collectors.ObserveFrame))
	}
	rec, err := trace.New(cols, rows, recOpts...)
	if err != nil {
		return err
	}
	frames := rec.Reconstruct(steps)

	if opts.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsOut, collectors.Gatherer()); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Debug("metrics written", "path", opts.MetricsOut)
	}

	var failed []error
	for _, f := range frames {
		if f.Err != nil {
			failed = append(failed, f.Err)
		}
	}

	if opts.Summary {
		render, err := tui.NewRenderer(opts.Styled)
		if err != nil {
			return err
		}
		player := replay.New(frames, cols, rows, replay.WithPolicy(replay.Placeholder))
		out, err := render(tui.Summary(filepath.Base(opts.TracePath), player.Entries(), failed))
		if err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
		_, err = io.WriteString(opts.Out, out)
		return err
	}

	if opts.Interactive {
		return runInteractive(ctx, opts, frames, cols, rows, policy, logger)
	}

	grid := tui.NewGridRenderer(opts.Profile, tui.WithAxes())
	player := replay.New(frames, cols, rows,
		replay.WithPolicy(policy),
		replay.WithLogger(logger),
		replay.WithRender(func(e replay.Entry) {
			fmt.Fprintf(opts.Out, "step %d\n", e.Step)
			if e.Err != nil {
				fmt.Fprintf(opts.Out, "failed: %v\n", e.Err)
			}
			fmt.Fprint(opts.Out, grid.Render(e.Snapshot))
			fmt.Fprintln(opts.Out)
		}),
	)

	if opts.Step >= 0 {
		if opts.Step < len(frames) && frames[opts.Step].Err != nil && policy == replay.SkipFailed {
			return fmt.Errorf("trace step %d failed: %w", opts.Step, frames[opts.Step].Err)
		}
		return player.SeekStep(opts.Step)
	}
	if player.Len() == 0 {
		return fmt.Errorf("%s: %w", opts.TracePath, replay.ErrEmpty)
	}
	if err := player.Play(ctx, opts.Interval); err != nil {
		return err
	}
	fmt.Fprintln(opts.Out, grid.Legend())
	if len(failed) > 0 {
		printSystemMessage(opts.Out, "%d of %d steps failed to reconstruct", len(failed), len(frames))
	}
	return nil
}

// runInteractive opens the step viewer at opts.Step, or at the first entry.
func runInteractive(ctx context.Context, opts ReplayOptions, frames []trace.Frame, cols, rows int, policy replay.Policy, logger *slog.Logger) error {
	player := replay.New(frames, cols, rows, replay.WithPolicy(policy), replay.WithLogger(logger))
	if player.Len() == 0 {
		return fmt.Errorf("%s: %w", opts.TracePath, replay.ErrEmpty)
	}
	if opts.Step >= 0 {
		if err := player.SeekStep(opts.Step); err != nil {
			return err
		}
	}
	return view(ctx, opts.Screen, player, filepath.Base(opts.TracePath), logger)
}

// view runs a step viewer over player on screen, or on the real terminal.
func view(ctx context.Context, screen tcell.Screen, player *replay.Player, title string, logger *slog.Logger) error {
	screen, err := openScreen(screen)
	if err != nil {
		return err
	}
	defer screen.Fini()

	v := terminal.NewViewer(screen, player,
		terminal.WithViewerTitle(title),
		terminal.WithViewerLogger(logger),
	)
	return handleExecutionError(v.Run(ctx))
}
