package main

import (
	"strings"

	"github.com/aretw0/rescuegrid"
	"github.com/aretw0/rescuegrid/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve an editing session over the Model Context Protocol",
	Long: `Exposes the grid editor as MCP tools: read or replace the snapshot, apply
mouse gestures, reconstruct traces and manage stored scenarios.

The stdio transport speaks JSON-RPC on stdin/stdout; logs go to stderr.
The sse transport listens on --addr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		scenario, _ := cmd.Flags().GetString("scenario")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = cli.RunMCP(sigCtx, cli.MCPOptions{
			Config:    cfg,
			Scenario:  scenario,
			Transport: transport,
			Version:   strings.TrimSpace(rescuegrid.Version),
			Logger:    logger,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("stopped by signal", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", cli.TransportStdio, "Transport: stdio or sse")
	mcpCmd.Flags().StringP("addr", "a", "", "Address to listen on for sse (default from config, :8080)")
	mcpCmd.Flags().String("scenario", "", "Stored scenario to start from")
}
