package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"procman/internal/app"
	"procman/internal/query"
)

var (
	treeRefresh bool
	treeTimeout int
)

func init() {
	rootCmd.AddCommand(cmdTree)
	cmdTree.Flags().BoolVar(&treeRefresh, "refresh", false, "Take a fresh snapshot instead of the cached one")
	cmdTree.Flags().IntVar(&treeTimeout, "timeout", 0, "Timeout in seconds for the daemon request (0 uses the config value)")
}

var cmdTree = &cobra.Command{
	Use:   "tree",
	Short: "Show processes as a parent/child tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		forest, err := controller().Tree(cmd.Context(), app.TreeParams{
			Refresh: treeRefresh,
			Timeout: seconds(treeTimeout),
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(forest) == 0 {
			fmt.Fprintln(out, "No processes found")
			return nil
		}
		query.Walk(forest, func(n *query.Node, depth int) {
			prefix := ""
			if depth > 0 {
				prefix = strings.Repeat("  ", depth-1) + "└─ "
			}
			fmt.Fprintf(out, "%s%d %s\n", prefix, n.PID, n.Name)
		})
		return nil
	},
}
