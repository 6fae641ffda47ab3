package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vpn-client/pkg/diagnostics"
	"vpn-client/pkg/model"
)

var diagnoseServerFlag string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run connection diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		printed := 0
		a.diag.Subscribe(func(s diagnostics.State) {
			if s.DiagnosticResult == nil {
				return
			}
			for _, step := range s.DiagnosticResult.Steps[printed:] {
				mark := "ok"
				if step.Status == model.StepFailed {
					mark = "FAIL"
				}
				fmt.Fprintf(out, "[%s] %-16s %s\n", mark, step.Name, step.Message)
				if step.Suggestion != "" {
					fmt.Fprintf(out, "      %s\n", step.Suggestion)
				}
				printed++
			}
		})

		a.diag.RunDiagnostics(cmd.Context(), diagnoseServerFlag)

		state := a.diag.State()
		if state.DiagnosticResult == nil {
			return fmt.Errorf("diagnostics did not run")
		}
		if state.DiagnosticResult.Failed() {
			return fmt.Errorf("diagnostics found problems")
		}
		fmt.Fprintln(out, "All checks passed")
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseServerFlag, "server", "", "host:port of the VPN server to probe")
	rootCmd.AddCommand(diagnoseCmd)
}
