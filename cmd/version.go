package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// versionCmd reports the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the picosh version.",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "picosh", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
