package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "List, upload and delete media files",
	}

	cmd.AddCommand(newMediaListCmd())
	cmd.AddCommand(newMediaUploadCmd())
	cmd.AddCommand(newMediaRemoveCmd())

	return cmd
}

func newMediaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List uploaded media",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newAgent().ListMedia(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No media.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tSIZE\tURL")
			for _, m := range items {
				size := "-"
				if m.Size != nil {
					size = humanSize(*m.Size)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Type, size, m.URL)
			}
			return w.Flush()
		},
	}
}

func newMediaUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image, video or font",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			media, err := newAgent().UploadMedia(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			color.Green("✓ Uploaded %s as media %d\n", args[0], media.ID)
			fmt.Printf("  URL: %s\n", media.URL)
			return nil
		},
	}
}

func newMediaRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a media file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := newAgent().DeleteMedia(cmd.Context(), id); err != nil {
				return err
			}
			color.Green("✓ Deleted media %d\n", id)
			return nil
		},
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
