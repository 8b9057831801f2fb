package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/feedsync"
	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/store"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
//	mock := &application.Mock{
//	    BackendFunc: func(context.Context) (store.Backend, error) {
//	        return store.NewMemory(), nil
//	    },
//	}
//	cmd := cache.NewCommand(mock)
type Mock struct {
	SyncerFunc            func(ctx context.Context) (feedsync.Syncer, error)
	FeedFunc              func(vendor, feedURL string) (feedsync.Feed, error)
	BackendFunc           func(ctx context.Context) (store.Backend, error)
	MinArchiveHandlesFunc func() int
	LoggerFunc            func() *zerolog.Logger
	OutputFormatFunc      func() string
	VersionFunc           func() string
	CommitFunc            func() string
	DateFunc              func() string
	BuiltByFunc           func() string
}

var _ Application = (*Mock)(nil)

// Syncer returns a syncer using the mock function or nil.
func (m *Mock) Syncer(ctx context.Context) (feedsync.Syncer, error) {
	if m.SyncerFunc != nil {
		return m.SyncerFunc(ctx)
	}
	return nil, nil
}

// Feed returns a feed using the mock function or an empty feed.
func (m *Mock) Feed(vendor, feedURL string) (feedsync.Feed, error) {
	if m.FeedFunc != nil {
		return m.FeedFunc(vendor, feedURL)
	}
	return feedsync.Feed{}, nil
}

// Backend returns a backend using the mock function or a fresh memory backend.
func (m *Mock) Backend(ctx context.Context) (store.Backend, error) {
	if m.BackendFunc != nil {
		return m.BackendFunc(ctx)
	}
	return store.NewMemory(), nil
}

// MinArchiveHandles returns the mock threshold or the default.
func (m *Mock) MinArchiveHandles() int {
	if m.MinArchiveHandlesFunc != nil {
		return m.MinArchiveHandlesFunc()
	}
	return constants.MinArchiveHandles
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
