package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticators(t *testing.T) {
	tests := []struct {
		name   string
		auth   Authenticator
		key    string
		header string
		want   string
	}{
		{"none", NoAuth, "secret", "X-Shopify-Access-Token", ""},
		{"shopify header", &HeaderAuth{Header: "X-Shopify-Access-Token"}, "secret", "X-Shopify-Access-Token", "secret"},
		{"empty key", &HeaderAuth{Header: "X-Shopify-Access-Token"}, "", "X-Shopify-Access-Token", ""},
		{"func", AuthFunc(func(r *http.Request, k string) { r.Header.Set("X-Key", k) }), "k1", "X-Key", "k1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Header: make(http.Header)}
			tt.auth.Apply(req, tt.key)
			assert.Equal(t, tt.want, req.Header.Get(tt.header))
		})
	}
}
