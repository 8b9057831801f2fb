package feed

import (
	"context"

	"github.com/agentstation/feedsync/pkg/handle"
	"github.com/agentstation/feedsync/pkg/logging"
)

// KeyFunc extracts the grouping key of a record. An empty key means the
// record cannot be grouped and is dropped.
type KeyFunc func(*Record) string

// KeyByField groups records by the value of a vendor field such as a product
// number.
func KeyByField(field string) KeyFunc {
	return func(r *Record) string {
		return r.Get(field)
	}
}

// KeyByHandle groups records by the handle derived from their title, for
// vendors without a product number.
func KeyByHandle(titleField string) KeyFunc {
	return func(r *Record) string {
		return handle.Normalize(r.Get(titleField))
	}
}

// Group is the ordered set of records sharing a grouping key. The first
// record is canonical for product-level fields.
type Group struct {
	Key     string
	Records []*Record
}

// First returns the canonical record.
func (g *Group) First() *Record {
	if len(g.Records) == 0 {
		return NewRecord(0)
	}
	return g.Records[0]
}

// Groups keeps groups in the order their key was first seen in the feed.
type Groups struct {
	order   []*Group
	byKey   map[string]*Group
	Dropped int
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.order)
}

// All returns the groups in first-seen order.
func (g *Groups) All() []*Group {
	return g.order
}

// Keys returns the grouping keys in first-seen order.
func (g *Groups) Keys() []string {
	keys := make([]string, len(g.order))
	for i, grp := range g.order {
		keys[i] = grp.Key
	}
	return keys
}

// Get returns the group for a key.
func (g *Groups) Get(key string) (*Group, bool) {
	grp, ok := g.byKey[key]
	return grp, ok
}

// GroupBy partitions records by key, preserving first-seen key order and the
// feed order of records within each group. Records without a key are dropped
// and logged.
func GroupBy(ctx context.Context, records []*Record, key KeyFunc) *Groups {
	log := logging.FromContext(ctx)
	groups := &Groups{byKey: make(map[string]*Group)}

	for _, r := range records {
		k := key(r)
		if k == "" {
			groups.Dropped++
			log.Debug().Int("line", r.Line).Msg("Dropping feed record without grouping key")
			continue
		}
		grp, ok := groups.byKey[k]
		if !ok {
			grp = &Group{Key: k}
			groups.byKey[k] = grp
			groups.order = append(groups.order, grp)
		}
		grp.Records = append(grp.Records, r)
	}

	if groups.Dropped > 0 {
		log.Warn().Int("dropped", groups.Dropped).Msg("Feed records dropped without grouping key")
	}
	return groups
}
