package middleware

import (
	"fmt"
	"net/http"

	"linkup/securestore"
)

// BearerAuth is an http.RoundTripper that adds the stored access token to
// every outgoing request. The token is read per request so a rotation
// takes effect immediately.
type BearerAuth struct {
	Store securestore.Store
	Next  http.RoundTripper
}

func (b *BearerAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := securestore.Token(b.Store)
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}

	next := b.Next
	if next == nil {
		next = http.DefaultTransport
	}

	if token == "" || req.Header.Get("Authorization") != "" {
		return next.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return next.RoundTrip(clone)
}
