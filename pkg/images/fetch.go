package images

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
)

// maxDownload caps how much of an image body is read before giving up.
const maxDownload = 8 * constants.MaxImageBytes

// Fetcher downloads image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches images over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with the default image timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: constants.ImageFetchTimeout}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("fetch", "image", url, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.WrapResource("fetch", "image", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewResourceError("fetch", "image", url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, errors.WrapResource("fetch", "image", url, err)
	}
	if len(data) > maxDownload {
		return nil, errors.NewResourceError("fetch", "image", url, fmt.Errorf("body larger than %d bytes", maxDownload))
	}
	return data, nil
}
