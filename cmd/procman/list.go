package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"procman/internal/app"
	"procman/internal/proc"
)

var (
	listName    string
	listUser    string
	listSort    string
	listRefresh bool
	listTimeout int
)

func init() {
	rootCmd.AddCommand(cmdList)
	addListFlags(cmdList)
}

// addListFlags registers the selection flags shared by list and export.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&listName, "name", "", "Keep processes whose name contains this text (case-insensitive)")
	cmd.Flags().StringVar(&listUser, "user", "", "Keep processes owned by this user")
	cmd.Flags().StringVar(&listSort, "sort", "", "Sort by cpu, memory, pid or name")
	cmd.Flags().BoolVar(&listRefresh, "refresh", false, "Take a fresh snapshot instead of the cached one")
	cmd.Flags().IntVar(&listTimeout, "timeout", 0, "Timeout in seconds for the daemon request (0 uses the config value)")
}

func listParams() app.ListParams {
	return app.ListParams{
		Name:    listName,
		Owner:   listUser,
		Sort:    listSort,
		Refresh: listRefresh,
		Timeout: seconds(listTimeout),
	}
}

var cmdList = &cobra.Command{
	Use:   "list",
	Short: "List processes",
	Long:  `Lists the processes of the latest snapshot, optionally filtered by name and owner and sorted by a key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := controller().List(cmd.Context(), listParams())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No processes found")
			return nil
		}
		fmt.Fprintln(out, renderRecords(records))
		return nil
	},
}

func renderRecords(records []proc.Record) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return header
			}
			return cell
		}).
		Headers("PID", "NAME", "USER", "CPU%", "MEM KB", "NICE")
	for _, r := range records {
		owner := r.Owner
		if owner == "" {
			owner = "-"
		}
		t.Row(
			strconv.Itoa(r.PID),
			r.Name,
			owner,
			strconv.FormatFloat(r.CPUPercent, 'f', 1, 64),
			strconv.FormatUint(r.MemoryKB, 10),
			strconv.Itoa(r.Nice),
		)
	}
	return t.Render()
}
