// Package sync provides the options and result of a feed synchronization run.
package sync

import (
	"time"

	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
)

// Options controls a single Syncer.Sync run.
type Options struct {
	// Orchestration control
	Timeout time.Duration // Timeout for the entire run (0 means none)
	Limit   int           // Process at most this many groups (0 means all)

	// Checkpoint control
	Fresh bool // Drop the saved checkpoint and start from the first group

	// Post-pass steps
	Archive           bool // Move vendor entries missing from the feed to draft
	Collections       bool // Ensure a smart collection per product tag
	MinArchiveHandles int  // Smallest feed, in distinct handles, allowed to archive
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		Timeout:           0,
		Limit:             0,
		Fresh:             false,
		Archive:           true,
		Collections:       true,
		MinArchiveHandles: constants.MinArchiveHandles,
	}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	if s.Limit < 0 {
		return &errors.ValidationError{
			Field:   "Limit",
			Value:   s.Limit,
			Message: "limit must be non-negative",
		}
	}
	if s.MinArchiveHandles < 0 {
		return &errors.ValidationError{
			Field:   "MinArchiveHandles",
			Value:   s.MinArchiveHandles,
			Message: "minimum archive handles must be non-negative",
		}
	}
	return nil
}

// WithTimeout configures the run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithLimit stops the pass after n groups. A limited pass never counts as
// complete, so the checkpoint is kept and archival is skipped.
func WithLimit(n int) Option {
	return func(opts *Options) {
		opts.Limit = n
	}
}

// WithFresh configures whether to ignore and delete the saved checkpoint.
func WithFresh(fresh bool) Option {
	return func(opts *Options) {
		opts.Fresh = fresh
	}
}

// WithArchive enables or disables archival after a complete pass.
func WithArchive(enabled bool) Option {
	return func(opts *Options) {
		opts.Archive = enabled
	}
}

// WithCollections enables or disables smart collection creation.
func WithCollections(enabled bool) Option {
	return func(opts *Options) {
		opts.Collections = enabled
	}
}

// WithMinArchiveHandles sets the archival safety threshold.
func WithMinArchiveHandles(n int) Option {
	return func(opts *Options) {
		opts.MinArchiveHandles = n
	}
}
