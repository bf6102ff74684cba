package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyTimeout int

func init() {
	rootCmd.AddCommand(cmdHistory)
	cmdHistory.Flags().IntVar(&historyTimeout, "timeout", 0, "Timeout in seconds for the daemon request (0 uses the config value)")
}

var cmdHistory = &cobra.Command{
	Use:   "history",
	Short: "Show every control action attempted, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, ok, err := controller().History(cmd.Context(), seconds(historyTimeout))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "No history yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintln(out, e.String())
		}
		return nil
	},
}
