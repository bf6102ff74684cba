package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statsRefresh bool
	statsTimeout int
)

func init() {
	rootCmd.AddCommand(cmdStats)
	cmdStats.Flags().BoolVar(&statsRefresh, "refresh", false, "Take a fresh snapshot instead of the cached one")
	cmdStats.Flags().IntVar(&statsTimeout, "timeout", 0, "Timeout in seconds for the daemon request (0 uses the config value)")
}

var cmdStats = &cobra.Command{
	Use:   "stats",
	Short: "Show machine-wide memory, swap and CPU usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := controller().Stats(cmd.Context(), statsRefresh, seconds(statsTimeout))
		if err != nil {
			return err
		}
		sys := st.System
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "memory: %d / %d KB (%.1f%%)\n", sys.UsedMemoryKB, sys.TotalMemoryKB, sys.MemoryPercent())
		fmt.Fprintf(out, "swap:   %d / %d KB (%.1f%%)\n", sys.UsedSwapKB, sys.TotalSwapKB, sys.SwapPercent())
		fmt.Fprintf(out, "cpu:    %.1f%% over %d cores\n", sys.CPUPercent, sys.CPUCores)
		fmt.Fprintf(out, "uptime: %s\n", time.Duration(sys.UptimeSeconds)*time.Second)
		if !st.TakenAt.IsZero() {
			fmt.Fprintf(out, "taken:  %s (%d samples)\n", st.TakenAt.Local().Format(time.DateTime), len(st.Samples))
		}
		return nil
	},
}
