package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/errors"
)

func TestClientJSON(t *testing.T) {
	var gotToken, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)

		switch r.URL.Path {
		case "/ok":
			w.Header().Add("Link", `<https://shop/admin/products.json?page_info=abc>; rel="next"`)
			_, _ = w.Write([]byte(`{"value":42}`))
		case "/throttled":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"errors":"Exceeded 2 calls per second"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := New("shopify", &HeaderAuth{Header: "X-Shopify-Access-Token"}, "shpat_x", WithHTTPClient(srv.Client()))

	var out struct {
		Value int `json:"value"`
	}
	h, err := c.JSON(context.Background(), http.MethodPost, srv.URL+"/ok", map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, "shpat_x", gotToken)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"a":"b"}`, gotBody)
	assert.Equal(t, "https://shop/admin/products.json?page_info=abc", NextLink(h))

	_, err = c.JSON(context.Background(), http.MethodGet, srv.URL+"/throttled", nil, nil)
	assert.True(t, errors.IsRateLimited(err))
	assert.Contains(t, err.Error(), "Exceeded 2 calls")

	_, err = c.JSON(context.Background(), http.MethodGet, srv.URL+"/down", nil, nil)
	assert.True(t, errors.IsUnavailable(err))
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "GET /down", apiErr.Endpoint)
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"none", "", ""},
		{"next only", `<https://s/p.json?page_info=n1>; rel="next"`, "https://s/p.json?page_info=n1"},
		{"previous and next", `<https://s/p.json?page_info=p0>; rel="previous", <https://s/p.json?page_info=n1>; rel="next"`, "https://s/p.json?page_info=n1"},
		{"previous only", `<https://s/p.json?page_info=p0>; rel="previous"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Link", tt.header)
			}
			assert.Equal(t, tt.want, NextLink(h))
		})
	}
}

func TestDecodeResponseEmptyBody(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}
	var out map[string]any
	assert.NoError(t, DecodeResponse(resp, "shopify", &out))
}
