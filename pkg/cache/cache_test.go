package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/logging"
	"github.com/agentstation/feedsync/pkg/store"
)

type entry struct {
	Decision string `yaml:"decision"`
	Width    int    `yaml:"width"`
}

func TestOpenEmpty(t *testing.T) {
	c, err := cache.Open[entry](context.Background(), store.NewMemory(), "v")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Dirty())
	assert.Equal(t, "v", c.Name())
}

func TestFlushAndReload(t *testing.T) {
	ctx := context.Background()
	backend := store.NewFile(t.TempDir())

	c, err := cache.Open[entry](ctx, backend, "deerhunter-validation")
	require.NoError(t, err)
	c.Set("https://cdn.example.com/a.jpg?w=1", entry{Decision: "valid", Width: 800})
	c.Set("https://cdn.example.com/b.jpg", entry{Decision: "failed"})
	assert.True(t, c.Dirty())
	require.NoError(t, c.Flush(ctx))
	assert.False(t, c.Dirty())

	reloaded, err := cache.Open[entry](ctx, backend, "deerhunter-validation")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg?w=1", "https://cdn.example.com/b.jpg"}, reloaded.Keys())
	got, ok := reloaded.Get("https://cdn.example.com/a.jpg?w=1")
	require.True(t, ok)
	assert.Equal(t, entry{Decision: "valid", Width: 800}, got)
}

func TestTimeValues(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ledger, err := cache.Open[time.Time](ctx, backend, "imported")
	require.NoError(t, err)
	ledger.Set("https://cdn/a.jpg", at)
	require.NoError(t, ledger.Flush(ctx))

	again, err := cache.Open[time.Time](ctx, backend, "imported")
	require.NoError(t, err)
	got, ok := again.Get("https://cdn/a.jpg")
	require.True(t, ok)
	assert.True(t, at.Equal(got))
}

func TestFlushSkipsCleanCache(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	c, err := cache.Open[bool](ctx, backend, "clean")
	require.NoError(t, err)

	require.NoError(t, c.Flush(ctx))
	assert.False(t, backend.Has("clean"))

	c.Delete("missing")
	assert.False(t, c.Dirty())
}

func TestReleaseAfterCancel(t *testing.T) {
	backend := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	c, err := cache.Open[bool](ctx, backend, "ledger")
	require.NoError(t, err)
	c.Set("k", true)

	cancel()
	c.Release(ctx)

	assert.True(t, backend.Has("ledger"))
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	require.NoError(t, backend.Write(ctx, "broken", []byte("entries: [unclosed")))

	tl := logging.NewTestLogger(t)
	c, err := cache.Open[bool](logging.WithLogger(ctx, tl.Logger), backend, "broken")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Dirty())
	assert.True(t, tl.Contains("Discarding unreadable cache snapshot"))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	c, err := cache.Open[bool](ctx, backend, "x")
	require.NoError(t, err)
	c.Set("a", true)
	require.NoError(t, c.Flush(ctx))

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
	assert.False(t, backend.Has("x"))
}
