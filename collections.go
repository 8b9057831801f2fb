package feedsync

import (
	"context"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/collections"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/logging"
	"github.com/agentstation/feedsync/pkg/transform"
)

// EnsureCollections ensures a smart collection for every tag the feed's
// products would carry. Products, images and stock are left untouched, and
// groups that would be rejected contribute no tags.
func (s *syncer) EnsureCollections(ctx context.Context, f Feed) (*collections.Result, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	ctx = logging.WithVendor(ctx, f.Profile.Vendor)

	records, err := f.Source.Records(ctx)
	if err != nil {
		return nil, errors.WrapResource("read", "feed", f.Name(), err)
	}

	t, err := transform.New(f.Profile, nil)
	if err != nil {
		return nil, err
	}

	groups := feed.GroupBy(ctx, records, f.Profile.KeyFunc())
	drafts := make([]*catalog.Draft, 0, groups.Len())
	for _, g := range groups.All() {
		draft, err := t.Transform(ctx, g)
		if err != nil {
			continue
		}
		drafts = append(drafts, draft)
	}

	return collections.EnsureForTags(ctx, s.store, collections.Tags(drafts))
}
