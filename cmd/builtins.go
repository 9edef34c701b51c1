package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephlewis42/picosh/core"
)

// builtinsCmd shows the commands handled inside the shell itself
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the shell handles without launching a process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, v := range core.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
