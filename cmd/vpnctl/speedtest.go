package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	speedHistoryFlag bool
	speedServerFlag  string
	speedVPNFlag     bool
)

var speedtestCmd = &cobra.Command{
	Use:   "speedtest",
	Short: "Measure connection speed and latency",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		if speedHistoryFlag {
			history, err := a.diag.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(out, "No speed tests recorded")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TESTED\tSERVER\tDOWN\tUP\tPING\tVPN")
			for _, r := range history {
				fmt.Fprintf(w, "%s\t%s\t%.1f Mbps\t%.1f Mbps\t%.0f ms\t%s\n",
					r.TestedAt.Format("2006-01-02 15:04"), r.ServerName,
					r.DownloadMbps, r.UploadMbps, r.PingMs, yesNo(r.VPNActive))
			}
			return w.Flush()
		}

		lastPhase := ""
		progress := func(phase string, fraction float64) {
			if phase != lastPhase {
				if lastPhase != "" {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s...", phase)
				lastPhase = phase
			}
		}
		a.diag.RunSpeedTest(cmd.Context(), speedVPNFlag, speedServerFlag, progress)
		if lastPhase != "" {
			fmt.Fprintln(out)
		}

		state := a.diag.State()
		if state.SpeedTestResult == nil {
			return fmt.Errorf("speed test failed, run with -v for details")
		}
		r := state.SpeedTestResult
		fmt.Fprintf(out, "Download: %.1f Mbps\n", r.DownloadMbps)
		fmt.Fprintf(out, "Upload:   %.1f Mbps\n", r.UploadMbps)
		fmt.Fprintf(out, "Ping:     %.0f ms (jitter %.1f ms)\n", r.PingMs, r.JitterMs)
		return nil
	},
}

func init() {
	speedtestCmd.Flags().BoolVar(&speedHistoryFlag, "history", false, "show recorded results instead of running a test")
	speedtestCmd.Flags().StringVar(&speedServerFlag, "server", "", "server name recorded with the result")
	speedtestCmd.Flags().BoolVar(&speedVPNFlag, "vpn", false, "mark the result as measured through the tunnel")
	rootCmd.AddCommand(speedtestCmd)
}
