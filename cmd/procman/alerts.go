package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procman/internal/app"
)

var (
	alertsCPU     float64
	alertsMemKB   uint64
	alertsRefresh bool
	alertsTimeout int
)

func init() {
	rootCmd.AddCommand(cmdAlerts)
	cmdAlerts.Flags().Float64Var(&alertsCPU, "cpu", 0, "CPU percent threshold (defaults to alerts.cpu_percent)")
	cmdAlerts.Flags().Uint64Var(&alertsMemKB, "mem", 0, "Resident memory threshold in KB (defaults to alerts.memory_kb)")
	cmdAlerts.Flags().BoolVar(&alertsRefresh, "refresh", false, "Take a fresh snapshot instead of the cached one")
	cmdAlerts.Flags().IntVar(&alertsTimeout, "timeout", 0, "Timeout in seconds for the daemon request (0 uses the config value)")
}

var cmdAlerts = &cobra.Command{
	Use:   "alerts",
	Short: "List processes over the CPU or memory thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := app.AlertParams{Refresh: alertsRefresh, Timeout: seconds(alertsTimeout)}
		if cmd.Flags().Changed("cpu") {
			params.CPUPercent = &alertsCPU
		}
		if cmd.Flags().Changed("mem") {
			params.MemoryKB = &alertsMemKB
		}
		alerts, err := controller().Alerts(cmd.Context(), params)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No process is over the alert thresholds")
			return nil
		}
		for _, a := range alerts {
			fmt.Fprintf(out, "pid=%d name=%s cpu=%.1f%% mem=%d KB triggered_by=%s\n",
				a.PID, a.Name, a.CPUPercent, a.MemoryKB, a.TriggeredBy)
		}
		return nil
	},
}
