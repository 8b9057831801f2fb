// Package cache provides persistent key/value caches that survive between
// runs, such as the image validation cache and the image import ledger.
//
// A Cache is loaded once, mutated in memory, and written back with Flush.
// Callers pair Open with a deferred Release so the cache is written even
// when a run fails or is cancelled:
//
//	validation, err := cache.Open[images.Entry](ctx, backend, "deerhunter-validation")
//	if err != nil {
//		return err
//	}
//	defer validation.Release(ctx)
package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
	"github.com/agentstation/feedsync/pkg/store"
)

// snapshotVersion is written into every persisted snapshot.
const snapshotVersion = 1

type snapshot[V any] struct {
	Version int          `yaml:"version"`
	Entries map[string]V `yaml:"entries"`
}

// Cache is a concurrent safe persistent map from string keys to V.
type Cache[V any] struct {
	mu      sync.RWMutex
	backend store.Backend
	name    string
	entries map[string]V
	dirty   bool
}

// Open loads the named cache from the backend, or starts empty when nothing
// was persisted yet. A snapshot that cannot be decoded is logged and
// replaced on the next flush.
func Open[V any](ctx context.Context, backend store.Backend, name string) (*Cache[V], error) {
	c := &Cache[V]{
		backend: backend,
		name:    name,
		entries: make(map[string]V),
	}

	data, err := backend.Read(ctx, name)
	switch {
	case errors.IsNotFound(err):
		return c, nil
	case err != nil:
		return nil, err
	}

	var snap snapshot[V]
	if err := yaml.Unmarshal(data, &snap); err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("cache", name).
			Msg("Discarding unreadable cache snapshot")
		c.dirty = true
		return c, nil
	}
	if snap.Entries != nil {
		c.entries = snap.Entries
	}
	return c, nil
}

// Name returns the cache name.
func (c *Cache[V]) Name() string {
	return c.name
}

// Get returns the value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores a value.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.dirty = true
}

// Delete removes a key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.dirty = true
	}
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns every key in sorted order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dirty reports whether there are unflushed changes.
func (c *Cache[V]) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Flush writes the cache to its backend if it changed since the last flush.
func (c *Cache[V]) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	data, err := yaml.Marshal(snapshot[V]{Version: snapshotVersion, Entries: c.entries})
	if err != nil {
		return errors.WrapParse("yaml", c.name, err)
	}
	if err := c.backend.Write(ctx, c.name, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Release flushes the cache and logs a failure instead of returning it. It
// is meant to be deferred right after Open. The flush runs even if ctx is
// already cancelled.
func (c *Cache[V]) Release(ctx context.Context) {
	if err := c.Flush(context.WithoutCancel(ctx)); err != nil {
		logging.FromContext(ctx).Error().
			Err(err).
			Str("cache", c.name).
			Msg("Failed to flush cache")
	}
}

// Clear removes every entry and deletes the persisted snapshot.
func (c *Cache[V]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V)
	c.dirty = false
	return c.backend.Delete(ctx, c.name)
}
