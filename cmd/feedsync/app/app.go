// Package app provides the application context and dependency management
// for the feedsync CLI. It centralizes configuration, logging and the lazily
// opened catalog and state connections.
package app

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agentstation/feedsync"
	"github.com/agentstation/feedsync/internal/cmd/application"
	"github.com/agentstation/feedsync/internal/shopify"
	"github.com/agentstation/feedsync/internal/sources/fetch"
	"github.com/agentstation/feedsync/internal/vendors"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/store"
)

// redisPrefix namespaces state keys in a shared redis database.
const redisPrefix = "feedsync:"

// App represents the feedsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Lazily opened connections
	mu          sync.Mutex
	store       catalog.Store
	backend     store.Backend
	redisClient *redis.Client
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The configuration is loaded from the environment and config files and can
// be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MinArchiveHandles returns the configured archival threshold.
func (a *App) MinArchiveHandles() int {
	return a.config.MinArchiveHandles
}

// Store returns the catalog client, creating it on first use.
func (a *App) Store() (catalog.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	if err := a.config.ValidateCatalog(); err != nil {
		return nil, err
	}

	client, err := shopify.New(shopify.Config{
		StoreURL:          a.config.StoreURL,
		APIKey:            a.config.APIKey,
		APIVersion:        a.config.APIVersion,
		MutationInterval:  a.config.MutationInterval,
		InventoryInterval: a.config.InventoryInterval,
	})
	if err != nil {
		return nil, errors.WrapResource("create", "catalog client", a.config.StoreURL, err)
	}
	a.store = client
	return client, nil
}

// Backend returns the state backend, connecting to redis on first use when
// it is configured.
func (a *App) Backend(ctx context.Context) (store.Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.backend != nil {
		return a.backend, nil
	}
	if err := a.config.ValidateState(); err != nil {
		return nil, err
	}

	switch a.config.StateBackend {
	case BackendRedis:
		backend, client, err := store.DialRedis(ctx, a.config.RedisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		a.backend = backend
		a.redisClient = client
		a.logger.Debug().Str("backend", BackendRedis).Msg("State backend connected")
	default:
		a.backend = store.NewFile(a.config.StateDir)
		a.logger.Debug().Str("backend", BackendFile).Str("dir", a.config.StateDir).Msg("State backend opened")
	}
	return a.backend, nil
}

// Syncer returns a Syncer over the catalog client and state backend.
func (a *App) Syncer(ctx context.Context) (feedsync.Syncer, error) {
	backend, err := a.Backend(ctx)
	if err != nil {
		return nil, err
	}
	st, err := a.Store()
	if err != nil {
		return nil, err
	}
	return feedsync.New(st, feedsync.WithBackend(backend))
}

// Feed resolves a vendor to its profile and feed source. A non-empty
// feedURL overrides the configured location.
func (a *App) Feed(vendor, feedURL string) (feedsync.Feed, error) {
	v, err := vendors.Get(vendor)
	if err != nil {
		return feedsync.Feed{}, err
	}
	if feedURL == "" {
		feedURL = a.config.FeedURL(v)
	}
	if feedURL == "" {
		return feedsync.Feed{}, errors.NewConfigError("feed", "no feed URL configured for "+v.Name(), nil)
	}

	parser, err := v.Parser(feedURL)
	if err != nil {
		return feedsync.Feed{}, err
	}

	opener := &fetch.Opener{
		FTPUser:     a.config.FTPUsername,
		FTPPassword: a.config.FTPPassword,
	}
	if strings.HasPrefix(strings.ToLower(feedURL), "s3://") {
		client, err := fetch.NewS3Client(context.Background(), a.config.S3Endpoint)
		if err != nil {
			return feedsync.Feed{}, err
		}
		opener.S3 = client
	}

	return feedsync.Feed{
		Profile: v.Profile,
		Source:  &fetch.Source{URL: feedURL, Parser: parser, Opener: opener},
	}, nil
}

// Shutdown releases the connections opened by the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.redisClient == nil {
		return nil
	}
	err := a.redisClient.Close()
	a.redisClient = nil
	a.backend = nil
	if err != nil {
		return errors.WrapResource("close", "redis", "", err)
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets the catalog store, mostly for tests.
func WithStore(st catalog.Store) Option {
	return func(a *App) error {
		a.store = st
		return nil
	}
}

// WithBackend sets the state backend, mostly for tests.
func WithBackend(backend store.Backend) Option {
	return func(a *App) error {
		a.backend = backend
		return nil
	}
}
