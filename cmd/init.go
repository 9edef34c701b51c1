package cmd

import (
	"log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/josephlewis42/picosh/core/config"
)

// initCmd writes the default shell configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the current directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		_, err := config.Initialize(afero.NewOsFs(), ".", logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
