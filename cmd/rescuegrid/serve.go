package main

import (
	"strings"

	"github.com/aretw0/rescuegrid"
	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the live-visualizer HTTP server",
	Long: `Serves the authoritative snapshot over HTTP: read it, replace it, stream
its changes as server-sent events and manage stored scenarios.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		scenario, _ := cmd.Flags().GetString("scenario")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = cli.RunServe(sigCtx, cli.ServeOptions{
			Config:   cfg,
			Scenario: scenario,
			Version:  strings.TrimSpace(rescuegrid.Version),
			Logger:   logger,
		})
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("stopped by signal", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().String("scenario", "", "Stored scenario to start from")
}
