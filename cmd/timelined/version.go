package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-timeline/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the timelined version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "timelined %s (commit %s, built %s)\n",
			config.Version, config.GitCommit, config.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
