// Package collections provides the collections command, which ensures the
// tag collections of a vendor feed without touching products.
package collections

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/feedsync/internal/cmd/application"
	"github.com/agentstation/feedsync/internal/cmd/output"
	"github.com/agentstation/feedsync/internal/cmd/table"
)

// NewCommand creates the collections command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var feedURL string

	cmd := &cobra.Command{
		Use:     "collections <vendor>",
		GroupID: "core",
		Short:   "Ensure a smart collection for every tag in the feed",
		Long: `Collections reads the vendor feed, derives the product tags the same
way sync does and creates a "tag equals <tag>" smart collection for every
tag that has no collection yet. Products are not created or changed.`,
		Args: cobra.ExactArgs(1),
		Example: `  feedsync collections chevalier
  feedsync collections deerhunter --feed ./feed.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := app.Feed(args[0], feedURL)
			if err != nil {
				return err
			}
			syncer, err := app.Syncer(ctx)
			if err != nil {
				return err
			}

			res, err := syncer.EnsureCollections(ctx, f)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Int("existing", res.Existing).
				Int("created", len(res.Created)).
				Int("failed", len(res.Failed)).
				Msg("Collections ensured")

			w := cmd.OutOrStdout()
			format := output.DetectFormat(app.OutputFormat())
			if format != output.FormatTable {
				return output.NewFormatter(format).Format(w, res)
			}
			data := table.CollectionsToTableData(res.Created, res.Failed)
			if data.Empty() {
				fmt.Fprintf(w, "All %d collections already exist\n", res.Existing)
				return nil
			}
			return output.NewFormatter(format).Format(w, data)
		},
	}

	cmd.Flags().StringVar(&feedURL, "feed", "", "feed location; overrides the configured URL")

	return cmd
}
