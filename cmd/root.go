package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/josephlewis42/picosh/core"
	"github.com/josephlewis42/picosh/core/config"
	"github.com/josephlewis42/picosh/core/logger"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		// No config is fine for an interactive shell; run on defaults.
		return config.Default(), nil
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands.
// Running it is running the shell.
var rootCmd = &cobra.Command{
	Use:   "picosh",
	Short: "A small interactive command dispatcher.",
	Long: `picosh reads commands, launches them with optional I/O redirection,
and tracks background jobs started with a trailing '&'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		eventLog := logger.Nop()
		var logFd io.Closer
		if !configuration.LogDisabled {
			fd, err := configuration.OpenAppLog()
			if err != nil {
				log.Printf("couldn't open app log, continuing without: %v", err)
			} else {
				eventLog = logger.New(fd, configuration.LogLevel)
				logFd = fd
			}
		}

		shell, err := core.NewShell(configuration, eventLog)
		if err != nil {
			return err
		}

		// The shell's exit code is the process exit code, so clean up
		// by hand instead of deferring past os.Exit.
		code := shell.Run()
		shell.Close()
		if logFd != nil {
			logFd.Close()
		}
		os.Exit(code)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
