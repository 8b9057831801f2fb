// Package cache provides commands to inspect and reset the persisted state
// of a vendor: the image validation cache, the import ledger and the
// checkpoint.
package cache

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/feedsync/internal/cmd/application"
)

// NewCommand creates the cache command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		GroupID: "management",
		Short:   "Inspect or reset persisted vendor state",
		Long: `Each vendor keeps three pieces of state between runs:

  <vendor>-validation   image URL verdicts (valid, resize, failed)
  <vendor>-imported     image URLs already attached to catalog products
  <vendor>-checkpoint   the last reconciled product of an interrupted run

They live in the state directory or in redis, depending on
FEEDSYNC_STATE_BACKEND.`,
	}

	cmd.AddCommand(newStatsCommand(app))
	cmd.AddCommand(newClearCommand(app))

	return cmd
}
