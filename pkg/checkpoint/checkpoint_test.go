package checkpoint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/checkpoint"
	"github.com/agentstation/feedsync/pkg/logging"
	"github.com/agentstation/feedsync/pkg/store"
)

func TestCursorLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	c := checkpoint.New(backend, "deerhunter-checkpoint", "run-1")

	key, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, c.Save(ctx, "5722"))
	require.NoError(t, c.Save(ctx, "5723: special"))

	key, err = checkpoint.New(backend, "deerhunter-checkpoint", "run-2").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5723: special", key)

	require.NoError(t, c.Delete(ctx))
	assert.False(t, backend.Has("deerhunter-checkpoint"))
	require.NoError(t, c.Delete(ctx), "deleting a missing cursor is fine")
}

func TestLoadBareKey(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	require.NoError(t, backend.Write(ctx, "cp", []byte("P-100\n")))

	key, err := checkpoint.New(backend, "cp", "").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "P-100", key)
}

func TestResumeIndex(t *testing.T) {
	keys := []string{"a", "b", "c"}

	tests := []struct {
		name string
		last string
		want int
	}{
		{"no checkpoint", "", 0},
		{"after first", "a", 1},
		{"after last", "c", 3},
		{"unknown key", "zz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkpoint.ResumeIndex(context.Background(), keys, tt.last))
		})
	}

	t.Run("unknown key warns", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		checkpoint.ResumeIndex(ctx, keys, "zz")
		assert.True(t, tl.Contains("Checkpoint key not in feed"))
	})
}
