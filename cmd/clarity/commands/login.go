package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the profile service",
		Long: `Exchange credentials for a session. Later commands act as the logged-in
user instead of the anonymous device id. The password can also be given in
CLARITY_PASSWORD.

Examples:
  clarity login --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	cmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	cmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("CLARITY_PASSWORD")
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.id.Login(cmd.Context(), a.profile, loginEmail, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	info(cmd, "✓ Logged in as %s", sess.UserID)
	return nil
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.id.Logout(cmd.Context())
			info(cmd, "✓ Logged out, acting as %s", a.id.UserID())
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user commands act as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if outputFormat == "json" {
				return printJSON(cmd, map[string]any{
					"user_id":   a.id.UserID(),
					"username":  a.id.Username(),
					"anonymous": a.id.Anonymous(),
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", a.id.UserID(), a.id.Username())
			return err
		},
	}
}
