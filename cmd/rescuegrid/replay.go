package main

import (
	"os"

	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/aretw0/rescuegrid/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace>",
	Short: "Reconstruct a simulation trace and print each step",
	Long: `Reads a trace (.json, .yaml or plain text), rebuilds one grid snapshot per
step and prints them in order. Grid dimensions are inferred from the
largest map indices unless --cols and --rows are given.

With --interactive the steps open in a terminal viewer: Left/Right step,
Home/End jump to the first or last step, q quits. --step picks the
starting step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		cols, _ := cmd.Flags().GetInt("cols")
		rows, _ := cmd.Flags().GetInt("rows")
		step, _ := cmd.Flags().GetInt("step")
		summary, _ := cmd.Flags().GetBool("summary")
		policy, _ := cmd.Flags().GetString("policy")
		interval, _ := cmd.Flags().GetDuration("interval")
		interactive, _ := cmd.Flags().GetBool("interactive")
		metricsOut, _ := cmd.Flags().GetString("metrics-out")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		profile := tui.ProfileFor(os.Stdout)
		if !summary && !interactive && step < 0 && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, profile)
		}

		err = cli.RunReplay(sigCtx, cli.ReplayOptions{
			TracePath:   args[0],
			Cols:        cols,
			Rows:        rows,
			Step:        step,
			Summary:     summary,
			Policy:      policy,
			Interval:    interval,
			Interactive: interactive,
			Out:         os.Stdout,
			Profile:     profile,
			Styled:      tui.IsTerminal(os.Stdout),
			Logger:      logger,
			MetricsOut:  metricsOut,
		})
		if sigCtx.Signal() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Int("cols", 0, "Grid columns (default: inferred from the trace)")
	replayCmd.Flags().Int("rows", 0, "Grid rows (default: inferred from the trace)")
	replayCmd.Flags().Int("step", -1, "Print only this trace step (with --interactive: start there)")
	replayCmd.Flags().Bool("summary", false, "Print a markdown summary table instead of grids")
	replayCmd.Flags().String("policy", "skip", "What to do with steps that fail to reconstruct: skip or placeholder")
	replayCmd.Flags().Duration("interval", 0, "Delay between steps (0 prints them all at once)")
	replayCmd.Flags().BoolP("interactive", "i", false, "Step through the trace with the arrow keys instead of printing")
	replayCmd.Flags().String("metrics-out", "", "Write reconstruction counters to this file in the prometheus text format")
}
