package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password or redeem an invitation token",
	}

	cmd.AddCommand(newPasswordChangeCmd())
	cmd.AddCommand(newPasswordSetCmd())

	return cmd
}

func newPasswordChangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change",
		Short: "Change the password of the logged-in admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			agent := newAgent()
			session, err := agent.Session()
			if err != nil {
				return err
			}
			if session.Admin == nil {
				return fmt.Errorf("not logged in: run `siteadmin login` first")
			}

			current, err := promptPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := promptNewPassword()
			if err != nil {
				return err
			}

			if err := agent.ChangePassword(cmd.Context(), session.Admin.ID, current, next); err != nil {
				return err
			}
			color.Green("✓ Password updated\n")
			return nil
		},
	}
}

func newPasswordSetCmd() *cobra.Command {
	var resetToken string

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Set a password with the token from an invitation email",
		Example: `  siteadmin password set --token 4f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent := newAgent()

			target, err := agent.VerifyResetToken(cmd.Context(), resetToken)
			if err != nil {
				return err
			}
			fmt.Printf("Setting password for %s\n", target.Email)

			password, err := promptNewPassword()
			if err != nil {
				return err
			}
			if err := agent.SetPassword(cmd.Context(), resetToken, password); err != nil {
				return err
			}
			color.Green("✓ Password set. You can now log in.\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&resetToken, "token", "", "token from the invitation link (required)")
	cmd.MarkFlagRequired("token")
	return cmd
}
