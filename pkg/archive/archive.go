// Package archive retires catalog entries that no longer appear in a feed.
// Entries are moved from active to draft, never deleted.
package archive

import (
	"context"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/handle"
	"github.com/agentstation/feedsync/pkg/logging"
)

// Result summarises one archival pass.
type Result struct {
	// Skipped is set when the feed was too small to trust.
	Skipped    bool
	FeedSize   int
	Scanned    int
	Archived   []string
	Failed     int
	Incomplete bool
}

// Guard archives vendor entries missing from the feed.
type Guard struct {
	store      catalog.Store
	vendor     string
	minHandles int
}

// Option configures a Guard.
type Option func(*Guard)

// WithMinHandles sets the smallest feed, in distinct handles, that may
// archive anything.
func WithMinHandles(n int) Option {
	return func(g *Guard) {
		g.minHandles = n
	}
}

// New returns a Guard for one vendor's entries.
func New(store catalog.Store, vendor string, opts ...Option) *Guard {
	g := &Guard{store: store, vendor: vendor, minHandles: constants.MinArchiveHandles}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run compares the catalog against the handles seen in the feed. Entry
// handles are normalized the same way feed titles are before comparing, so
// accent-only differences are not treated as missing. Listing failures end
// the pass early with Incomplete set and the error returned; per-entry
// status failures are counted.
func (g *Guard) Run(ctx context.Context, feedHandles handle.Set) (*Result, error) {
	log := logging.Ctx(ctx).With().Str("vendor", g.vendor).Logger()
	res := &Result{FeedSize: feedHandles.Len()}

	if res.FeedSize < g.minHandles {
		res.Skipped = true
		log.Warn().
			Int("handles", res.FeedSize).
			Int("minimum", g.minHandles).
			Msg("Feed below archival threshold, archival skipped")
		return res, nil
	}

	cursor := ""
	for {
		page, err := g.store.ListProducts(ctx, g.vendor, cursor)
		if err != nil {
			res.Incomplete = true
			log.Error().Err(err).Int("scanned", res.Scanned).Msg("Listing catalog entries failed")
			return res, err
		}

		for _, e := range page.Entries {
			res.Scanned++
			if e.Status != catalog.StatusActive {
				continue
			}
			if feedHandles.Contains(e.Handle) {
				continue
			}
			if err := g.store.SetStatus(ctx, e.ID, catalog.StatusDraft); err != nil {
				res.Failed++
				log.Warn().Err(err).Str("handle", e.Handle).Int64("product_id", e.ID).Msg("Archiving failed")
				continue
			}
			res.Archived = append(res.Archived, e.Handle)
			log.Info().Str("handle", e.Handle).Int64("product_id", e.ID).Msg("Product archived")
		}

		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	log.Info().
		Int("scanned", res.Scanned).
		Int("archived", len(res.Archived)).
		Int("failed", res.Failed).
		Msg("Archival pass complete")
	return res, nil
}
