package main

import (
	"fmt"

	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a scenario snapshot or a trace file",
	Long: `Scenario JSON files are decoded and checked for shape, cell states and
entity positions. Trace files are reconstructed step by step and every
parse error is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()

		isTrace, err := cli.IsTraceFile(path)
		if err != nil {
			return err
		}

		if isTrace {
			cols, _ := cmd.Flags().GetInt("cols")
			rows, _ := cmd.Flags().GetInt("rows")
			failed, err := cli.ValidateTraceFile(out, path, cols, rows)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("validation failed: %d trace steps did not reconstruct", failed)
			}
			fmt.Fprintln(out, "Trace is valid! ✅")
			return nil
		}

		entities, _ := cmd.Flags().GetBool("entities")
		snap, err := cli.ValidateSnapshotFile(path, entities)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(out, "Scenario is valid! ✅ (%dx%d)\n", snap.Cols(), snap.Rows())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("entities", true, "Require one entity position per responder and survivor cell")
	validateCmd.Flags().Int("cols", 0, "Grid columns for traces (default: inferred)")
	validateCmd.Flags().Int("rows", 0, "Grid rows for traces (default: inferred)")
}
