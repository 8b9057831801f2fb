// Package application defines what feedsync commands need from the running
// application. Commands accept this interface rather than the concrete App,
// so they can be tested with Mock.
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            syncer, err := app.Syncer(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... use syncer
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/feedsync"
	"github.com/agentstation/feedsync/pkg/store"
)

// Application provides the dependencies commands need.
type Application interface {
	// Syncer returns a Syncer writing to the configured catalog store and
	// persisting state in the configured backend.
	Syncer(ctx context.Context) (feedsync.Syncer, error)

	// Feed resolves a vendor name to its profile and feed source. A
	// non-empty feedURL overrides the configured location.
	Feed(vendor, feedURL string) (feedsync.Feed, error)

	// Backend returns the state backend holding caches and checkpoints.
	Backend(ctx context.Context) (store.Backend, error)

	// MinArchiveHandles returns the configured archival threshold.
	MinArchiveHandles() int

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
