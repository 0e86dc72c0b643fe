package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/batala/site-server-go/internal/model"
)

func newSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Inspect the site content",
	}
	cmd.AddCommand(newSiteShowCmd())
	return cmd
}

func newSiteShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the sections of the site",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := newAgent().GetSite(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(site)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SECTION\tTYPE\tVISIBLE\tITEMS")
			for _, s := range site.Sections {
				visible := color.GreenString("yes")
				if !s.Visible {
					visible = color.YellowString("no")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Type, visible, describeItems(s.Settings))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func describeItems(settings model.SectionSettings) string {
	switch s := settings.(type) {
	case *model.EventsSettings:
		return fmt.Sprintf("%d events", len(s.Events))
	case *model.GallerySettings:
		return fmt.Sprintf("%d images, %d videos", len(s.Images), len(s.Videos))
	case *model.TextSettings:
		return fmt.Sprintf("%d paragraphs", len(s.Text))
	default:
		return "-"
	}
}
