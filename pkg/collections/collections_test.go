package collections_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/catalog/memory"
	"github.com/agentstation/feedsync/pkg/collections"
	"github.com/agentstation/feedsync/pkg/errors"
)

func TestTags(t *testing.T) {
	drafts := []*catalog.Draft{
		{Tags: []string{"handle:jacka", "Jackor", "Herr", "group_sku:5722"}},
		{Tags: []string{"handle:byxa", "Byxor", "Herr", " Dam "}},
	}
	assert.Equal(t, []string{"Jackor", "Herr", "Byxor", "Dam"}, collections.Tags(drafts))
}

func TestEnsureForTags(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_, err := s.CreateCollection(ctx, &catalog.Collection{Title: "Herr", Rules: []catalog.CollectionRule{catalog.TagRule("Herr")}})
	require.NoError(t, err)

	res, err := collections.EnsureForTags(ctx, s, []string{"Jackor", "Herr", "handle:x", "Dam"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, []string{"Dam", "Jackor"}, res.Created)
	assert.Empty(t, res.Failed)

	all, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []catalog.CollectionRule{catalog.TagRule("Dam")}, all[1].Rules)

	// a second pass creates nothing
	res, err = collections.EnsureForTags(ctx, s, []string{"Jackor", "Herr", "Dam"})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, 3, res.Existing)
}

func TestEnsureForTagsFailures(t *testing.T) {
	ctx := context.Background()

	s := memory.New()
	s.Fail("CreateCollection", errors.NewAPIError("shopify", 422, "title taken"))
	res, err := collections.EnsureForTags(ctx, s, []string{"Jackor"})
	require.NoError(t, err)
	assert.Contains(t, res.Failed, "Jackor")

	s = memory.New()
	s.Fail("ListCollections", errors.NewAPIError("shopify", 503, "down"))
	_, err = collections.EnsureForTags(ctx, s, []string{"Jackor"})
	assert.True(t, errors.IsUnavailable(err))
}
