package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vpn-client/pkg/subscription"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <plan-id>",
	Short: "Purchase a subscription plan",
	Args:  cobra.ExactArgs(1),
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
		for _, p := range state.AvailablePlans {
			if p.ID != args[0] {
				continue
			}
			a.subs.Purchase(cmd.Context(), p)
			return reportPurchase(cmd, a)
		}
		return fmt.Errorf("unknown plan %q, see vpnctl plans", args[0])
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the active subscription",
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
		if state.CurrentSubscription == nil {
			return fmt.Errorf("no active subscription to cancel")
		}
		a.subs.CancelSubscription(cmd.Context(), state.CurrentSubscription.ID)
		state = a.subs.State()
		if state.PurchaseState == subscription.PurchaseError {
			return fmt.Errorf("%s", state.PurchaseError)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Subscription canceled")
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore purchases and re-fetch the subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.subs.RestorePurchases(cmd.Context())
		return reportPurchase(cmd, a)
	},
}

var trialStatusFlag bool

var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Activate the free trial",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if trialStatusFlag {
			ts, err := a.client.GetTrialStatus(cmd.Context()).Unpack()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Eligible:       %s\n", yesNo(ts.IsEligible))
			fmt.Fprintf(out, "Trial used:     %s\n", yesNo(ts.TrialUsed))
			if ts.DaysRemaining > 0 {
				fmt.Fprintf(out, "Days remaining: %d\n", ts.DaysRemaining)
			}
			return nil
		}

		a.subs.Load(cmd.Context())
		state := a.subs.State()
		if state.LoadError != nil {
			return *state.LoadError
		}
		a.subs.ActivateTrial(cmd.Context())
		return reportPurchase(cmd, a)
	},
}

func reportPurchase(cmd *cobra.Command, a *app) error {
	state := a.subs.State()
	switch state.PurchaseState {
	case subscription.PurchaseSuccess:
		if sub := state.CurrentSubscription; sub != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Subscription %s active until %s\n",
				sub.ID, sub.ExpiresAt.Format("2006-01-02"))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Done")
		}
		return nil
	case subscription.PurchaseError:
		return fmt.Errorf("%s", state.PurchaseError)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do")
		return nil
	}
}

func init() {
	trialCmd.Flags().BoolVar(&trialStatusFlag, "status", false, "show trial eligibility instead of activating")
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(trialCmd)
}
