package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage account security settings",
}

var antiphishingCmd = &cobra.Command{
	Use:   "antiphishing [code]",
	Short: "Show, set or clear the antiphishing code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if antiphishingClearFlag {
			if _, err := a.client.DeleteAntiphishingCode(ctx).Unpack(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Antiphishing code removed")
			return nil
		}
		if len(args) == 1 {
			if _, err := a.client.SetAntiphishingCode(ctx, args[0]).Unpack(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Antiphishing code updated")
			return nil
		}
		code, err := a.client.GetAntiphishingCode(ctx).Unpack()
		if err != nil {
			return err
		}
		if code.Code == "" {
			fmt.Fprintln(out, "No antiphishing code set")
			return nil
		}
		fmt.Fprintf(out, "Code: %s (updated %s)\n", code.Code, code.UpdatedAt.Format("2006-01-02"))
		return nil
	},
}

var antiphishingClearFlag bool

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the account password",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		current, err := promptLine(cmd, "Current password: ")
		if err != nil {
			return err
		}
		next, err := promptLine(cmd, "New password: ")
		if err != nil {
			return err
		}
		if _, err := a.client.ChangePassword(cmd.Context(), current, next).Unpack(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
		return nil
	},
}

var twofaCmd = &cobra.Command{
	Use:   "2fa",
	Short: "Manage two-factor authentication",
}

var twofaSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Begin TOTP enrollment",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		setup, err := a.client.SetupTwoFactor(cmd.Context()).Unpack()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Secret: %s\n", setup.Secret)
		fmt.Fprintf(out, "URL:    %s\n", setup.OTPAuthURL)
		if len(setup.BackupCodes) > 0 {
			fmt.Fprintln(out, "Backup codes:")
			for _, c := range setup.BackupCodes {
				fmt.Fprintf(out, "  %s\n", c)
			}
		}
		fmt.Fprintln(out, "Confirm with: vpnctl account 2fa verify <code>")
		return nil
	},
}

var twofaVerifyCmd = &cobra.Command{
	Use:   "verify <code>",
	Short: "Confirm TOTP enrollment with a code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.client.VerifyTwoFactor(cmd.Context(), args[0]).Unpack(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Two-factor authentication enabled")
		return nil
	},
}

var twofaDisableCmd = &cobra.Command{
	Use:   "disable <code>",
	Short: "Disable two-factor authentication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.client.DisableTwoFactor(cmd.Context(), args[0]).Unpack(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Two-factor authentication disabled")
		return nil
	},
}

var telegramUnlinkFlag bool

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Show or unlink the Telegram binding",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		if telegramUnlinkFlag {
			if _, err := a.client.UnlinkTelegram(cmd.Context()).Unpack(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Telegram unlinked")
			return nil
		}
		link, err := a.client.GetTelegramLink(cmd.Context()).Unpack()
		if err != nil {
			return err
		}
		if link.Linked {
			fmt.Fprintf(out, "Linked to @%s\n", link.Username)
			return nil
		}
		fmt.Fprintf(out, "Not linked. Send this code to the bot: %s\n", link.LinkCode)
		return nil
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Fprintln(cmd.OutOrStdout(), "This permanently deletes your account and subscription.")
		password, err := promptLine(cmd, "Password to confirm: ")
		if err != nil {
			return err
		}
		if _, err := a.client.DeleteAccount(cmd.Context(), password).Unpack(); err != nil {
			return err
		}
		if err := a.session.SignOut(); err != nil {
			a.buf.Warning("local session cleanup failed", map[string]any{"error": err.Error()})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
		return nil
	},
}

func init() {
	antiphishingCmd.Flags().BoolVar(&antiphishingClearFlag, "clear", false, "remove the antiphishing code")
	telegramCmd.Flags().BoolVar(&telegramUnlinkFlag, "unlink", false, "remove the Telegram binding")
	twofaCmd.AddCommand(twofaSetupCmd, twofaVerifyCmd, twofaDisableCmd)
	accountCmd.AddCommand(antiphishingCmd, passwordCmd, twofaCmd, telegramCmd, deleteAccountCmd)
	rootCmd.AddCommand(accountCmd)
}
