package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logsJSONFlag  bool
	logsClearFlag bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Export the diagnostic log of this invocation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		// The buffer lives in-process, so give it one state load to export.
		a.subs.Load(cmd.Context())

		if logsClearFlag {
			a.diag.ClearLogs()
			fmt.Fprintln(cmd.OutOrStdout(), "Log cleared")
			return nil
		}
		if logsJSONFlag {
			data, err := a.diag.ExportLogs()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.buf.ExportText())
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolVar(&logsJSONFlag, "json", false, "export as JSON")
	logsCmd.Flags().BoolVar(&logsClearFlag, "clear", false, "empty the buffer instead of exporting")
	rootCmd.AddCommand(logsCmd)
}
