// Package sync provides the sync command, which runs one vendor feed against
// the catalog and prints the run report.
package sync

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/feedsync/internal/cmd/application"
	syncpkg "github.com/agentstation/feedsync/pkg/sync"
)

// Flags holds the sync command flags.
type Flags struct {
	Feed              string
	NoArchive         bool
	NoCollections     bool
	MinArchiveHandles int
	Fresh             bool
	Limit             int
	Timeout           time.Duration
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync <vendor>",
		GroupID: "core",
		Short:   "Synchronize a vendor feed into the catalog",
		Args:    cobra.ExactArgs(1),
		Long: `Sync reads the vendor feed and reconciles every product group into the
catalog:

• New products are created with their variants, images and tags
• Existing products gain missing variants and images
• Stock levels are written to the first catalog location
• A smart collection is ensured for every product tag
• Vendor products that left the feed are moved to draft

Progress is checkpointed after every product. An interrupted run resumes
after the last reconciled product unless --fresh is given.`,
		Example: `  feedsync sync chevalier                        # Full pass
  feedsync sync deerhunter --feed ./feed.xml     # Read a local feed file
  feedsync sync chevalier --fresh                # Ignore the checkpoint
  feedsync sync chevalier --limit 20             # Reconcile 20 products and stop
  feedsync sync chevalier --no-archive -o json   # Skip archival, JSON report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("min-archive-handles") {
				flags.MinArchiveHandles = app.MinArchiveHandles()
			}
			return run(cmd, app, args[0], flags)
		},
	}

	flags.Register(cmd.Flags())

	return cmd
}

// Register adds the sync flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Feed, "feed", "", "feed location (http(s), ftp, s3 URL or file path); overrides the configured URL")
	fs.BoolVar(&f.NoArchive, "no-archive", false, "do not archive products missing from the feed")
	fs.BoolVar(&f.NoCollections, "no-collections", false, "do not ensure tag collections")
	fs.IntVar(&f.MinArchiveHandles, "min-archive-handles", 0, "skip archival when the feed yields fewer handles (default from config)")
	fs.BoolVar(&f.Fresh, "fresh", false, "drop the checkpoint and start from the first product")
	fs.IntVar(&f.Limit, "limit", 0, "reconcile at most this many products (0 = all)")
	fs.DurationVar(&f.Timeout, "timeout", 0, "abort the run after this duration (0 = none)")
}

// Options converts flags to sync options.
func (f *Flags) Options() []syncpkg.Option {
	return []syncpkg.Option{
		syncpkg.WithArchive(!f.NoArchive),
		syncpkg.WithCollections(!f.NoCollections),
		syncpkg.WithMinArchiveHandles(f.MinArchiveHandles),
		syncpkg.WithFresh(f.Fresh),
		syncpkg.WithLimit(f.Limit),
		syncpkg.WithTimeout(f.Timeout),
	}
}

func run(cmd *cobra.Command, app application.Application, vendor string, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	f, err := app.Feed(vendor, flags.Feed)
	if err != nil {
		return err
	}
	syncer, err := app.Syncer(ctx)
	if err != nil {
		return err
	}

	logger.Info().Str("vendor", f.Name()).Msg("Starting sync")
	res, err := syncer.Sync(ctx, f, flags.Options()...)
	if res != nil {
		if printErr := printResult(cmd.OutOrStdout(), app.OutputFormat(), res); printErr != nil {
			logger.Error().Err(printErr).Msg("Failed to print report")
		}
	}
	if err != nil {
		return err
	}

	logger.Info().Msg(res.Summary())
	return nil
}
