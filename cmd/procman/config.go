package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdConfig)
}

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration and daemon file locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controller()
		if err := ctrl.ConfigErr(); err != nil {
			return err
		}
		cfg := ctrl.Config()
		paths := ctrl.Paths()
		source := ctrl.ConfigPath()
		if source == "" {
			source = "(defaults and environment)"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config file:        %s\n", source)
		fmt.Fprintf(out, "socket:             %s\n", paths.Socket)
		fmt.Fprintf(out, "pid file:           %s\n", paths.PID)
		fmt.Fprintf(out, "refresh_interval:   %s\n", cfg.RefreshInterval)
		fmt.Fprintf(out, "rpc_timeout:        %s\n", cfg.RPCTimeout)
		fmt.Fprintf(out, "log_level:          %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "alerts.cpu_percent: %g\n", cfg.Alerts.CPUPercent)
		fmt.Fprintf(out, "alerts.memory_kb:   %d\n", cfg.Alerts.MemoryKB)
		return nil
	},
}
