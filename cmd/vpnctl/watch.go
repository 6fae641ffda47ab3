package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vpn-client/pkg/model"
	"vpn-client/pkg/subscription"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow pushed events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.events == nil {
			return fmt.Errorf("no push endpoint configured (ws_url)")
		}

		out := cmd.OutOrStdout()
		a.events.OnNotification(func(e model.NotificationEvent) {
			if e.Body != "" {
				fmt.Fprintf(out, "%s: %s\n", e.Title, e.Body)
			} else {
				fmt.Fprintln(out, e.Title)
			}
		})
		// Push events trigger a re-fetch; print the refreshed subscription.
		a.subs.Subscribe(func(s subscription.State) {
			if s.CurrentSubscription != nil {
				fmt.Fprintf(out, "subscription %s is now %s\n",
					s.CurrentSubscription.ID, s.CurrentSubscription.Status)
			}
		})

		a.subs.Load(cmd.Context())
		a.events.Start()

		fmt.Fprintln(out, "Watching for events, Ctrl-C to stop")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
