package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/feedsync"
	"github.com/agentstation/feedsync/internal/cmd/application"
	"github.com/agentstation/feedsync/internal/vendors"
	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/checkpoint"
	"github.com/agentstation/feedsync/pkg/images"
	"github.com/agentstation/feedsync/pkg/store"
)

func newClearCommand(app application.Application) *cobra.Command {
	var keepLedger bool

	cmd := &cobra.Command{
		Use:   "clear <vendor>",
		Short: "Drop cached image verdicts, the import ledger and the checkpoint",
		Long: `Clear removes the persisted state of a vendor. The next sync
revalidates every image URL and starts from the first product.

Clearing the import ledger makes the next sync attach images again that
the catalog already holds under a different URL. Use --keep-ledger to
keep it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			v, err := vendors.Get(args[0])
			if err != nil {
				return err
			}
			backend, err := app.Backend(ctx)
			if err != nil {
				return err
			}

			if err := Clear(ctx, backend, v.Name(), keepLedger); err != nil {
				return err
			}
			app.Logger().Info().Str("vendor", v.Name()).Bool("keep_ledger", keepLedger).Msg("State cleared")
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared state for %s\n", v.Name())
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepLedger, "keep-ledger", false, "keep the import ledger")

	return cmd
}

// Clear removes the persisted state of the named vendor profile.
func Clear(ctx context.Context, backend store.Backend, name string, keepLedger bool) error {
	validation, err := cache.Open[images.Entry](ctx, backend, feedsync.ValidationCacheName(name))
	if err != nil {
		return err
	}
	if err := validation.Clear(ctx); err != nil {
		return err
	}

	if !keepLedger {
		ledger, err := cache.Open[time.Time](ctx, backend, feedsync.ImportLedgerName(name))
		if err != nil {
			return err
		}
		if err := ledger.Clear(ctx); err != nil {
			return err
		}
	}

	return checkpoint.New(backend, feedsync.CheckpointName(name), "").Delete(ctx)
}
