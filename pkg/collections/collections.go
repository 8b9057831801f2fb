// Package collections keeps one tag-driven smart collection per product tag.
package collections

import (
	"context"
	"sort"
	"strings"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/logging"
)

// Result summarises an EnsureForTags pass.
type Result struct {
	Existing int
	Created  []string
	Failed   map[string]error
}

// Tags returns the distinct collection-worthy tags of the drafts in first
// seen order. Handle and grouping tags are excluded.
func Tags(drafts []*catalog.Draft) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range drafts {
		for _, t := range d.Tags {
			t = strings.TrimSpace(t)
			if t == "" || internal(t) {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func internal(tag string) bool {
	return strings.HasPrefix(tag, catalog.HandleTagPrefix) || strings.HasPrefix(tag, catalog.GroupTagPrefix)
}

// EnsureForTags creates a smart collection matching "tag equals <tag>" for
// every tag that has no collection with the same title yet. Failures are
// collected per tag; only listing the existing collections is fatal.
func EnsureForTags(ctx context.Context, store catalog.Store, tags []string) (*Result, error) {
	log := logging.Ctx(ctx)

	existing, err := store.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		titles[c.Title] = struct{}{}
	}

	res := &Result{Failed: make(map[string]error)}
	wanted := append([]string(nil), tags...)
	sort.Strings(wanted)

	for _, tag := range wanted {
		if internal(tag) {
			continue
		}
		if _, ok := titles[tag]; ok {
			res.Existing++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		c := &catalog.Collection{Title: tag, Rules: []catalog.CollectionRule{catalog.TagRule(tag)}}
		created, err := store.CreateCollection(ctx, c)
		if err != nil {
			res.Failed[tag] = err
			log.Warn().Err(err).Str("tag", tag).Msg("Creating collection failed")
			continue
		}
		titles[tag] = struct{}{}
		res.Created = append(res.Created, tag)
		log.Info().Str("tag", tag).Int64("collection_id", created.ID).Msg("Collection created")
	}
	return res, nil
}
