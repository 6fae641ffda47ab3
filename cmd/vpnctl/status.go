package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.subs.Load(cmd.Context())
		state := a.subs.State()
		if state.LoadError != nil {
			return *state.LoadError
		}

		out := cmd.OutOrStdout()
		if state.CurrentSubscription == nil {
			fmt.Fprintln(out, "No active subscription")
			if state.TrialEligibility {
				fmt.Fprintln(out, "You are eligible for a free trial: vpnctl trial")
			}
			return nil
		}
		sub := state.CurrentSubscription
		fmt.Fprintf(out, "Subscription: %s\n", sub.ID)
		fmt.Fprintf(out, "Plan:         %s\n", sub.PlanID)
		fmt.Fprintf(out, "Status:       %s\n", sub.Status)
		fmt.Fprintf(out, "Expires:      %s\n", sub.ExpiresAt.Format("2006-01-02"))
		fmt.Fprintf(out, "Auto-renew:   %s\n", yesNo(sub.AutoRenew))
		if sub.IsTrial {
			fmt.Fprintln(out, "This is a trial subscription.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
