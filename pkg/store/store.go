// Package store persists named state blobs (caches, checkpoints) between
// runs. A Backend stores opaque bytes; callers own the encoding.
package store

import (
	"context"
	"sync"

	"github.com/agentstation/feedsync/pkg/errors"
)

// Backend reads and writes named blobs. Read returns an error matching
// errors.ErrNotFound when the blob does not exist; Delete of a missing blob
// is not an error.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// Memory is a Backend kept in process memory.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Read implements Backend.
func (m *Memory) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, errors.NewNotFoundError("state", name)
	}
	return append([]byte(nil), data...), nil
}

// Write implements Backend.
func (m *Memory) Write(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

// Delete implements Backend.
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

// Has reports whether a blob exists.
func (m *Memory) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[name]
	return ok
}
