package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmailFlag    string
	loginPasswordFlag string
	loginTOTPFlag     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		email := loginEmailFlag
		if email == "" {
			email, err = promptLine(cmd, "Email: ")
			if err != nil {
				return err
			}
		}
		password := loginPasswordFlag
		if password == "" {
			password, err = promptLine(cmd, "Password: ")
			if err != nil {
				return err
			}
		}

		resp, err := a.client.Login(cmd.Context(), email, password, loginTOTPFlag).Unpack()
		if err != nil {
			return err
		}
		if err := a.session.SignIn(resp.Token); err != nil {
			return fmt.Errorf("storing session: %w", err)
		}
		claims, err := a.session.Claims()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", claims.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		// Server-side invalidation is best effort; the local token goes either way.
		if _, err := a.client.Logout(cmd.Context()).Unpack(); err != nil {
			a.buf.Warning("server-side logout failed", map[string]any{"error": err.Error()})
		}
		if err := a.session.SignOut(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmailFlag, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPasswordFlag, "password", "", "account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginTOTPFlag, "totp", "", "one-time code when 2FA is enabled")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
