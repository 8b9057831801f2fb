package images

import (
	"bytes"
	"context"
	"image"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/logging"
)

// DefaultLimits returns the catalog's image limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:  constants.MaxImageBytes,
		MaxWidth:  constants.MaxImageWidth,
		MaxHeight: constants.MaxImageHeight,
		TargetMax: constants.ResampleMaxDimension,
		Quality:   constants.ResampleJPEGQuality,
	}
}

// Gatekeeper validates image URLs against the limits, consulting and
// updating the persistent validation cache. Resampled bytes are memoised for
// the lifetime of the Gatekeeper only.
type Gatekeeper struct {
	cache   *cache.Cache[Entry]
	fetcher Fetcher
	limits  Limits
	memo    *gocache.Cache
	now     func() time.Time
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(g *Gatekeeper) {
		g.fetcher = f
	}
}

// WithLimits replaces the default limits.
func WithLimits(l Limits) Option {
	return func(g *Gatekeeper) {
		g.limits = l
	}
}

// WithClock sets the time source for cache timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gatekeeper) {
		g.now = now
	}
}

// New creates a Gatekeeper backed by the given validation cache.
func New(validation *cache.Cache[Entry], opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		cache:   validation,
		fetcher: NewHTTPFetcher(),
		limits:  DefaultLimits(),
		memo:    gocache.New(constants.ImageMemoTTL, constants.ImageMemoCleanupInterval),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Prepare returns a usable image reference for url, or false when the image
// must be omitted. It never fails the calling product.
func (g *Gatekeeper) Prepare(ctx context.Context, url string) (catalog.ImageRef, bool) {
	log := logging.FromContext(ctx).With().Str("url", url).Logger()

	if entry, ok := g.cache.Get(url); ok {
		switch entry.Decision {
		case DecisionValid:
			return catalog.RemoteImage{URL: url}, true
		case DecisionFailed:
			log.Debug().Str("reason", entry.Reason).Msg("Skipping image cached as failed")
			return nil, false
		}
	}

	if v, ok := g.memo.Get(url); ok {
		return v.(catalog.AttachedImage), true
	}

	data, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("Image fetch failed")
		g.fail(url, err.Error())
		return nil, false
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("Image could not be decoded")
		g.fail(url, "decode: "+err.Error())
		return nil, false
	}

	entry := Entry{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Bytes:     int64(len(data)),
		Format:    format,
		CheckedAt: g.now().UTC(),
	}

	if !g.limits.Exceeds(entry.Bytes, cfg.Width, cfg.Height) {
		entry.Decision = DecisionValid
		g.cache.Set(url, entry)
		return catalog.RemoteImage{URL: url}, true
	}

	out, size, err := Resample(data, g.limits.TargetMax, g.limits.Quality)
	if err != nil {
		log.Warn().Err(err).Msg("Image resampling failed")
		g.fail(url, "resample: "+err.Error())
		return nil, false
	}

	log.Info().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int64("bytes", entry.Bytes).
		Int("resampled_width", size.X).
		Int("resampled_height", size.Y).
		Msg("Image resampled")

	entry.Decision = DecisionResize
	g.cache.Set(url, entry)

	ref := catalog.AttachedImage{Source: url, Filename: attachmentName(url), Data: out}
	g.memo.Set(url, ref, gocache.DefaultExpiration)
	return ref, true
}

func (g *Gatekeeper) fail(url, reason string) {
	g.cache.Set(url, Entry{Decision: DecisionFailed, Reason: reason, CheckedAt: g.now().UTC()})
}
