// Package feedsync synchronizes vendor product feeds into a storefront
// catalog. A Syncer reads a feed, groups its rows into products, creates or
// merges each product, sets stock levels, and retires catalog entries that
// left the feed.
package feedsync

import (
	"context"
	"fmt"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/collections"
	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/sync"
	"github.com/agentstation/feedsync/pkg/transform"
)

// Syncer synchronizes feeds into a catalog store and reports product events
type Syncer interface {
	// Sync runs one pass of the feed against the catalog
	Sync(ctx context.Context, f Feed, opts ...sync.Option) (*sync.Result, error)

	// EnsureCollections creates the smart collections the feed's tags need
	EnsureCollections(ctx context.Context, f Feed) (*collections.Result, error)

	// OnProductCreated registers a callback for newly created products
	OnProductCreated(ProductCreatedHook)

	// OnProductUpdated registers a callback for merged products
	OnProductUpdated(ProductUpdatedHook)

	// OnProductFailed registers a callback for products that failed
	OnProductFailed(ProductFailedHook)

	// OnProductArchived registers a callback for entries moved to draft
	OnProductArchived(ProductArchivedHook)
}

// Feed pairs a vendor profile with the source its rows come from.
type Feed struct {
	Profile *transform.Profile
	Source  feed.Source
}

// Name returns the profile name, which prefixes every persisted state name.
func (f Feed) Name() string {
	if f.Profile == nil {
		return ""
	}
	return f.Profile.Name
}

func (f Feed) validate() error {
	if f.Profile == nil {
		return errors.NewValidationError("profile", nil, "feed profile cannot be nil")
	}
	if f.Source == nil {
		return errors.NewValidationError("source", nil, "feed source cannot be nil")
	}
	return f.Profile.Validate()
}

// syncer is the internal implementation of the Syncer interface
type syncer struct {
	store  catalog.Store
	config *config
	hooks  *hooks
}

// New creates a Syncer writing to store with the given options
func New(store catalog.Store, opts ...Option) (Syncer, error) {
	if store == nil {
		return nil, errors.NewValidationError("store", nil, "catalog store cannot be nil")
	}

	s := &syncer{
		store:  store,
		config: defaultConfig(),
		hooks:  newHooks(),
	}

	if err := s.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	return s, nil
}

// OnProductCreated registers a callback for newly created products
func (s *syncer) OnProductCreated(fn ProductCreatedHook) {
	s.hooks.OnProductCreated(fn)
}

// OnProductUpdated registers a callback for merged products
func (s *syncer) OnProductUpdated(fn ProductUpdatedHook) {
	s.hooks.OnProductUpdated(fn)
}

// OnProductFailed registers a callback for products that failed
func (s *syncer) OnProductFailed(fn ProductFailedHook) {
	s.hooks.OnProductFailed(fn)
}

// OnProductArchived registers a callback for entries moved to draft
func (s *syncer) OnProductArchived(fn ProductArchivedHook) {
	s.hooks.OnProductArchived(fn)
}

// ValidationCacheName returns the state name of a profile's image validation cache.
func ValidationCacheName(profile string) string {
	return profile + constants.ValidationCacheSuffix
}

// ImportLedgerName returns the state name of a profile's image import ledger.
func ImportLedgerName(profile string) string {
	return profile + constants.ImportLedgerSuffix
}

// CheckpointName returns the state name of a profile's resume cursor.
func CheckpointName(profile string) string {
	return profile + constants.CheckpointSuffix
}
