package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newReviewCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage the Notion review queue",
	}

	var dryRun bool
	archive := &cobra.Command{
		Use:   "archive",
		Short: "Archive review pages marked as resolved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub := newReviewPublisher(a.cfg, dryRun)
			if pub == nil {
				return errors.New("notion token and review database id are required")
			}
			n, err := pub.ArchiveResolved(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d resolved review item(s)\n", n)
			return nil
		},
	}
	archive.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be archived")

	cmd.AddCommand(archive)
	return cmd
}
