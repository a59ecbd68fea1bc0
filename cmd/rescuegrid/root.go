package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/aretw0/rescuegrid/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rescuegrid",
	Short: "Rescuegrid reconstructs and edits disaster-response grid snapshots",
	Long: `Rescuegrid turns simulation traces into grid snapshots you can replay,
and lets you paint scenarios by hand in the terminal or over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (RESCUEGRID_* env vars override it)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// setup loads the configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cli.NewLogger(os.Stderr, cfg.Log, debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
