package feedsync

import (
	"time"

	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/images"
	"github.com/agentstation/feedsync/pkg/store"
)

// config holds the Syncer configuration
type config struct {
	backend   store.Backend
	imageOpts []images.Option
	now       func() time.Time
}

func defaultConfig() *config {
	return &config{
		backend: store.NewFile(constants.DefaultStateDir),
		now:     time.Now,
	}
}

// Option is a function that configures a Syncer instance
type Option func(*config) error

// options applies the given options to the Syncer
func (s *syncer) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(s.config); err != nil {
			return err
		}
	}
	return nil
}

// WithBackend configures where caches and checkpoints are persisted
func WithBackend(backend store.Backend) Option {
	return func(c *config) error {
		if backend == nil {
			return errors.NewValidationError("backend", nil, "state backend cannot be nil")
		}
		c.backend = backend
		return nil
	}
}

// WithStateDir persists caches and checkpoints as files under dir
func WithStateDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewValidationError("state_dir", dir, "state directory cannot be empty")
		}
		c.backend = store.NewFile(dir)
		return nil
	}
}

// WithImageFetcher configures how image URLs are downloaded for validation
func WithImageFetcher(f images.Fetcher) Option {
	return func(c *config) error {
		c.imageOpts = append(c.imageOpts, images.WithFetcher(f))
		return nil
	}
}

// WithImageLimits configures the image size and dimension limits
func WithImageLimits(l images.Limits) Option {
	return func(c *config) error {
		c.imageOpts = append(c.imageOpts, images.WithLimits(l))
		return nil
	}
}

// WithClock configures the time source for run timing and cache timestamps
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		c.now = now
		c.imageOpts = append(c.imageOpts, images.WithClock(now))
		return nil
	}
}
