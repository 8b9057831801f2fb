package transport

import (
	"net/http"
)

// Authenticator adds credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, apiKey string)
}

// AuthFunc adapts a function to Authenticator.
type AuthFunc func(req *http.Request, apiKey string)

// Apply calls f.
func (f AuthFunc) Apply(req *http.Request, apiKey string) {
	f(req, apiKey)
}

// NoAuth sends requests without credentials.
var NoAuth = AuthFunc(func(*http.Request, string) {})

// HeaderAuth sends the key in a single header, such as the catalog's
// X-Shopify-Access-Token. Requests without a key are left untouched.
type HeaderAuth struct {
	Header string
}

// Apply implements Authenticator.
func (a *HeaderAuth) Apply(req *http.Request, apiKey string) {
	if apiKey == "" {
		return
	}
	req.Header.Set(a.Header, apiKey)
}
