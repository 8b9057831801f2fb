package archive_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/archive"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/catalog/memory"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/handle"
)

func feedOf(n int, extra ...string) handle.Set {
	s := handle.NewSet(extra...)
	for i := 0; i < n; i++ {
		s.Add(fmt.Sprintf("Produkt %d", i))
	}
	return s
}

func TestRunSkipsSmallFeeds(t *testing.T) {
	s := memory.New()
	s.Seed(catalog.Entry{Handle: "gone", Vendor: "Deerhunter"})

	res, err := archive.New(s, "Deerhunter", archive.WithMinHandles(200)).Run(context.Background(), feedOf(50))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 50, res.FeedSize)
	assert.Empty(t, s.Calls(), "no catalog calls when the gate trips")
}

func TestRunArchivesMissingActiveEntries(t *testing.T) {
	s := memory.New(memory.WithPageSize(2))
	kept := s.Seed(catalog.Entry{Handle: "trojan-asa", Vendor: "Chevalier"})
	accented := s.Seed(catalog.Entry{Handle: "tröja-åsa", Vendor: "Chevalier"})
	gone := s.Seed(catalog.Entry{Handle: "old-jacket", Vendor: "Chevalier"})
	alreadyDraft := s.Seed(catalog.Entry{Handle: "older-jacket", Vendor: "Chevalier", Status: catalog.StatusDraft})
	otherVendor := s.Seed(catalog.Entry{Handle: "foreign", Vendor: "Deerhunter"})

	feed := feedOf(3, "Trojan Åsa", "Tröja Åsa")
	res, err := archive.New(s, "Chevalier", archive.WithMinHandles(3)).Run(context.Background(), feed)
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, []string{"old-jacket"}, res.Archived)
	assert.Equal(t, 2, s.CallCount("ListProducts"))

	status := func(id int64) catalog.Status {
		e, _ := s.Product(id)
		return e.Status
	}
	assert.Equal(t, catalog.StatusActive, status(kept.ID))
	assert.Equal(t, catalog.StatusActive, status(accented.ID))
	assert.Equal(t, catalog.StatusDraft, status(gone.ID))
	assert.Equal(t, catalog.StatusDraft, status(alreadyDraft.ID))
	assert.Equal(t, catalog.StatusActive, status(otherVendor.ID))
	assert.Zero(t, s.CallCount("DeleteProduct"))
}

func TestRunFailures(t *testing.T) {
	t.Run("status failure is counted", func(t *testing.T) {
		s := memory.New()
		s.Seed(catalog.Entry{Handle: "gone", Vendor: "V"})
		s.Fail("SetStatus", errors.NewAPIError("shopify", 500, "boom"))

		res, err := archive.New(s, "V", archive.WithMinHandles(1)).Run(context.Background(), feedOf(1))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Empty(t, res.Archived)
	})

	t.Run("listing failure stops the pass", func(t *testing.T) {
		s := memory.New()
		s.Fail("ListProducts", errors.NewAPIError("shopify", 503, "down"))

		res, err := archive.New(s, "V", archive.WithMinHandles(1)).Run(context.Background(), feedOf(1))
		assert.True(t, errors.IsUnavailable(err))
		assert.True(t, res.Incomplete)
	})
}
