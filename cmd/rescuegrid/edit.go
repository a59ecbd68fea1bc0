package main

import (
	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [scenario]",
	Short: "Paint a scenario interactively in the terminal",
	Long: `Opens the grid editor on a stored scenario, or on an empty grid of the
configured size when it does not exist yet.

Mouse: left click cycles FIRE, EXIT, FIRST_RESPONDER, SURVIVOR forward and
right click backward; dragging stamps the last tool over the rectangle;
middle button clears; shift toggles drones.
Keys: s save, c cancel gesture, q quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cols, _ := cmd.Flags().GetInt("cols"); cols > 0 {
			cfg.Grid.Cols = cols
		}
		if rows, _ := cmd.Flags().GetInt("rows"); rows > 0 {
			cfg.Grid.Rows = rows
		}

		name := cli.DefaultScenario
		if len(args) > 0 {
			name = args[0]
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunEdit(sigCtx, cli.EditOptions{
			Config:   cfg,
			Scenario: name,
			Logger:   logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().Int("cols", 0, "Grid columns for a new scenario (default from config)")
	editCmd.Flags().Int("rows", 0, "Grid rows for a new scenario (default from config)")
}
