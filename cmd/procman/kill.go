package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"procman/internal/app"
)

var actionTimeout int

func init() {
	for _, c := range []*cobra.Command{cmdKill, cmdNice, cmdRestart} {
		c.Flags().IntVar(&actionTimeout, "timeout", 0, "Timeout in seconds for the daemon request (0 uses the config value)")
		rootCmd.AddCommand(c)
	}
}

func parsePID(raw string) (int, error) {
	pid, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid pid %q", raw)
	}
	return pid, nil
}

func displayName(res app.ActionResult) string {
	if res.Name == "" {
		return "-"
	}
	return res.Name
}

var cmdKill = &cobra.Command{
	Use:   "kill <pid>",
	Short: "Forcibly terminate a process",
	Long:  "Sends SIGKILL to the process. Every attempt, successful or not, is recorded in the action history.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		res, err := controller().Kill(cmd.Context(), app.ActionParams{PID: pid, Timeout: seconds(actionTimeout)})
		if err != nil {
			return err
		}
		if err := outcomeError("kill", res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Killed pid=%d name=%s\n", res.PID, displayName(res))
		return nil
	},
}

var cmdNice = &cobra.Command{
	Use:   "nice <pid> <value>",
	Short: "Set the scheduling priority of a process (-20..19)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid nice value %q", args[1])
		}
		res, err := controller().Nice(cmd.Context(), app.ActionParams{PID: pid, Value: value, Timeout: seconds(actionTimeout)})
		if err != nil {
			return err
		}
		if err := outcomeError("nice", res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set nice=%d on pid=%d name=%s\n", value, res.PID, displayName(res))
		return nil
	},
}

var cmdRestart = &cobra.Command{
	Use:   "restart <pid>",
	Short: "Attempt to restart a process (not supported; the attempt is recorded)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		res, err := controller().Restart(cmd.Context(), app.ActionParams{PID: pid, Timeout: seconds(actionTimeout)})
		if err != nil {
			return err
		}
		if err := outcomeError("restart", res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restarted pid=%d\n", res.PID)
		return nil
	},
}
