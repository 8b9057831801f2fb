// Package shopify implements catalog.Store over the Shopify admin REST API.
//
// Every call waits on a rate limiter chosen by its class: product and
// collection mutations, inventory level writes, and reads each have their own
// spacing, so callers never sleep between catalog calls themselves.
package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/feedsync/internal/transport"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
)

// Service is the service name carried by API errors.
const Service = "shopify"

// AccessTokenHeader carries the admin API token.
const AccessTokenHeader = "X-Shopify-Access-Token"

// Config configures a Client.
type Config struct {
	// StoreURL is the shop domain, with or without scheme
	// (my-shop.myshopify.com).
	StoreURL string

	// APIKey is the admin API access token.
	APIKey string

	// APIVersion defaults to constants.DefaultAPIVersion.
	APIVersion string

	// Throttle intervals; zero values use the constants package defaults.
	MutationInterval  time.Duration
	InventoryInterval time.Duration
	ReadInterval      time.Duration

	// PageSize is the limit used when listing; defaults to
	// constants.DefaultPageSize.
	PageSize int

	// HTTPClient overrides the HTTP client, mostly for tests.
	HTTPClient *http.Client
}

// Client is a throttled catalog.Store backed by the admin REST API.
type Client struct {
	http     *transport.Client
	base     string
	pageSize int

	mutation  *rate.Limiter
	inventory *rate.Limiter
	read      *rate.Limiter
}

var _ catalog.Store = (*Client)(nil)

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.StoreURL) == "" {
		return nil, errors.NewConfigError(Service, "SHOPIFY_STORE_URL is required", nil)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.NewConfigError(Service, "SHOPIFY_API_KEY is required", nil)
	}

	base, err := baseURL(cfg.StoreURL, cfg.APIVersion)
	if err != nil {
		return nil, err
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	return &Client{
		http:      transport.New(Service, &transport.HeaderAuth{Header: AccessTokenHeader}, cfg.APIKey, transport.WithHTTPClient(cfg.HTTPClient)),
		base:      base,
		pageSize:  pageSize,
		mutation:  limiter(cfg.MutationInterval, constants.MutationInterval),
		inventory: limiter(cfg.InventoryInterval, constants.InventoryInterval),
		read:      limiter(cfg.ReadInterval, constants.ReadInterval),
	}, nil
}

// BaseURL returns the versioned admin API root.
func (c *Client) BaseURL() string {
	return c.base
}

func baseURL(storeURL, version string) (string, error) {
	if version == "" {
		version = constants.DefaultAPIVersion
	}
	raw := strings.TrimRight(strings.TrimSpace(storeURL), "/")
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", errors.NewConfigError(Service, fmt.Sprintf("invalid store URL %q", storeURL), err)
	}
	return fmt.Sprintf("%s://%s/admin/api/%s", u.Scheme, u.Host, version), nil
}

func limiter(interval, fallback time.Duration) *rate.Limiter {
	if interval <= 0 {
		interval = fallback
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// call waits on lim and performs one JSON request against path (relative to
// the admin root) or an absolute URL.
func (c *Client) call(ctx context.Context, lim *rate.Limiter, method, path string, body, target any) (http.Header, error) {
	if err := lim.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		endpoint = c.base + path
	}

	start := time.Now()
	h, err := c.http.JSON(ctx, method, endpoint, body, target)
	logging.Ctx(ctx).Debug().
		Str("method", method).
		Str("path", path).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("catalog call")
	return h, err
}
