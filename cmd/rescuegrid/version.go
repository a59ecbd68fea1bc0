package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/rescuegrid"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rescuegrid",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rescuegrid version %s\n", strings.TrimSpace(rescuegrid.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
