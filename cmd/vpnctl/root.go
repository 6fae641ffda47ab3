// vpnctl is the command-line frontend of the VPN client: account and
// subscription management, speed tests and connection diagnostics.
package main

import (
	"github.com/spf13/cobra"

	"vpn-client/pkg/version"
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:           "vpnctl",
	Short:         "Manage your VPN account, subscription and diagnostics",
	Version:       version.Build,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "mirror diagnostic log entries to stderr")
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
