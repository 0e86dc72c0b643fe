package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/batala/site-server-go/internal/client"
)

func newAdminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "List, invite and manage admin accounts",
	}

	cmd.AddCommand(newAdminsListCmd())
	cmd.AddCommand(newAdminsInviteCmd())
	cmd.AddCommand(newAdminsToggleCmd())
	cmd.AddCommand(newAdminsResendCmd())

	return cmd
}

func newAdminsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			admins, err := newAgent().ListAdmins(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(admins)
			}

			if len(admins) == 0 {
				fmt.Println("No admins.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tSTATUS\tCREATED")
			for _, a := range admins {
				status := color.GreenString("active")
				if !a.IsActive {
					status = color.YellowString("pending")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", a.ID, a.Email, status, a.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newAdminsInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite <email>",
		Short: "Create an inactive admin and email them a set-password link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := newAgent().InviteAdmin(cmd.Context(), args[0])
			if err != nil {
				if client.IsStatus(err, http.StatusBadGateway) {
					color.Yellow("The admin was created but the invitation email failed. Retry with `siteadmin admins resend <id>`.\n")
				}
				return err
			}
			color.Green("✓ Invitation sent to %s (id %d)\n", admin.Email, admin.ID)
			return nil
		},
	}
}

func newAdminsToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate an admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := newAgent().ToggleAdminActive(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := color.GreenString("active")
			if !status.IsActive {
				state = color.RedString("inactive")
			}
			fmt.Printf("%s is now %s\n", status.Email, state)
			return nil
		},
	}
}

func newAdminsResendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend <id>",
		Short: "Send a fresh invitation to a pending admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := newAgent().ResendInvite(cmd.Context(), id); err != nil {
				return err
			}
			color.Green("✓ Invitation sent\n")
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
