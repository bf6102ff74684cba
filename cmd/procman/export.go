package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procman/internal/app"
)

var (
	exportFormat string
	exportOut    string
)

func init() {
	rootCmd.AddCommand(cmdExport)
	addListFlags(cmdExport)
	cmdExport.Flags().StringVarP(&exportFormat, "format", "f", "text", "Output format: text, json or prom")
	cmdExport.Flags().StringVarP(&exportOut, "out", "o", "", "Destination file")
	_ = cmdExport.MarkFlagRequired("out")
}

var cmdExport = &cobra.Command{
	Use:   "export",
	Short: "Write the selected processes to a file",
	Long:  "Selects processes with the same flags as `list` and writes them atomically to --out.",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := controller().Export(cmd.Context(), app.ExportParams{
			List:   listParams(),
			Format: exportFormat,
			Path:   exportOut,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d process(es) to %s\n", n, exportOut)
		return nil
	},
}
