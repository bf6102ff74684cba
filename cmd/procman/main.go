package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"procman/internal/config"
	"procman/internal/logging"
)

var (
	configPath string
	localMode  bool
	logLevel   string

	rootLog = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:          "procman [command]",
	Short:        "procman: inspect and control local processes",
	Long:         `procman lists, filters and controls the processes of this machine, either through the procman daemon or with an in-process engine (--local).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			if cfg, err := config.Load(configPath); err == nil {
				level = cfg.LogLevel
			}
		}
		log, err := logging.New(level, os.Stderr)
		if err != nil {
			return err
		}
		rootLog = log.With().Str("cmd", cmd.Name()).Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "Use an in-process engine instead of the daemon")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to the config value")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
