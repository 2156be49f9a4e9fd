// Package middleware provides http.RoundTripper middleware for the controller client.
package middleware

import (
	"maps"
	"net/http"
)

// Referer returns a middleware that sets the Referer header on all requests.
// UniFi controllers reject credential posts to /api/login without a referer
// pointing at the login page, so the client applies this chain-wide.
func Referer(referer string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &refererTransport{
			next:    next,
			referer: referer,
		}
	}
}

type refererTransport struct {
	next    http.RoundTripper
	referer string
}

func (t *refererTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid modifying original
	req = cloneRequest(req)

	req.Header.Set("Referer", t.referer)

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
