package main

import (
	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Show a scenario or trace read-only in the terminal",
	Long: `Shows a scenario snapshot (.json) without editing it. A trace file opens
in the step viewer, the same as replay --interactive. With --scenario the
snapshot is read from the configured store instead of a file.

Keys: Left/Right step, Home/End first/last step, q quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		scenario, _ := cmd.Flags().GetString("scenario")
		cols, _ := cmd.Flags().GetInt("cols")
		rows, _ := cmd.Flags().GetInt("rows")
		policy, _ := cmd.Flags().GetString("policy")

		opts := cli.ViewOptions{
			Scenario: scenario,
			Config:   cfg,
			Cols:     cols,
			Rows:     rows,
			Policy:   policy,
			Logger:   logger,
		}
		if len(args) > 0 {
			opts.Path = args[0]
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunView(sigCtx, opts)
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringP("scenario", "s", "", "Show this stored scenario instead of a file")
	viewCmd.Flags().Int("cols", 0, "Grid columns for a trace (default: inferred)")
	viewCmd.Flags().Int("rows", 0, "Grid rows for a trace (default: inferred)")
	viewCmd.Flags().String("policy", "placeholder", "Failed trace steps: skip or placeholder")
}
