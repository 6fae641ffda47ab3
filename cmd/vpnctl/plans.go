package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vpn-client/pkg/api"
	"vpn-client/pkg/model"
)

var plansCachedFlag bool

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List available subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		strategy := api.NetworkOnly
		if plansCachedFlag {
			strategy = api.CacheFirst
		}
		plans, err := a.client.GetPlans(cmd.Context(), strategy).Unpack()
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No plans available")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tPERIOD\tTRIAL")
		for _, p := range plans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%dd\t%s\n",
				p.ID, p.Name, formatPrice(p), p.PeriodDays, yesNo(p.IsTrial))
		}
		return w.Flush()
	},
}

func formatPrice(p model.Plan) string {
	if p.PriceCents == 0 {
		return "free"
	}
	return fmt.Sprintf("%.2f %s", float64(p.PriceCents)/100, p.Currency)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	plansCmd.Flags().BoolVar(&plansCachedFlag, "cached", false, "serve from the local plan cache when possible")
	rootCmd.AddCommand(plansCmd)
}
