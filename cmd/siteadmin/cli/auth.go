package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Example: `  siteadmin login --email root@example.com
  siteadmin login   # prompts for email and password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				var err error
				if email, err = promptLine("Email: "); err != nil {
					return err
				}
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			admin, err := newAgent().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen)
			green.Print("✓ ")
			fmt.Printf("Logged in as %s (%s), session saved to %s\n", admin.Email, admin.Role, sessionStore().Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			agent := newAgent()
			session, err := agent.Session()
			if err != nil {
				return err
			}
			if session.Empty() {
				fmt.Printf("No session stored in %s\n", sessionStore().Path())
				return nil
			}

			if err := agent.Logout(cmd.Context()); err != nil {
				color.Yellow("Server logout failed (%v); local session removed\n", err)
				return nil
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}
