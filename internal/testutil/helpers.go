// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SessionCookieName is the cookie the mock controller issues on login.
const SessionCookieName = "unifises"

// EnvelopeOK wraps data (a JSON array or object literal) in a success envelope.
func EnvelopeOK(data string) string {
	return fmt.Sprintf(`{"meta":{"rc":"ok"},"data":%s}`, data)
}

// EnvelopeError builds an error envelope carrying the controller message.
func EnvelopeError(msg string) string {
	return fmt.Sprintf(`{"meta":{"rc":"error","msg":%q},"data":[]}`, msg)
}

// LoginHandler returns a handler for POST /api/login that issues a session
// cookie and a success envelope.
func LoginHandler(t *testing.T, cookieValue string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "login must be a POST")
		assert.NotEmpty(t, r.Header.Get("Referer"), "login must carry a Referer header")

		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: cookieValue, Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(EnvelopeOK("[]")))
		require.NoError(t, err, "Failed to write login response")
	}
}

// NewMockController creates a test server that behaves like a controller:
// POST /api/login issues a session cookie, GET /logout always succeeds, and
// query paths are served from the handlers map. Query paths require the
// session cookie; a request without it fails the test.
func NewMockController(t *testing.T, cookieValue string, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return newController(t, httptest.NewServer, cookieValue, handlers)
}

// NewMockControllerTLS is NewMockController on a TLS listener with a
// self-signed certificate, mirroring real controller deployments.
func NewMockControllerTLS(t *testing.T, cookieValue string, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return newController(t, httptest.NewTLSServer, cookieValue, handlers)
}

func newController(
	t *testing.T,
	listen func(http.Handler) *httptest.Server,
	cookieValue string,
	handlers map[string]http.HandlerFunc,
) *httptest.Server {
	t.Helper()

	login := LoginHandler(t, cookieValue)

	return listen(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			login(w, r)
			return
		case "/logout":
			w.WriteHeader(http.StatusOK)
			return
		}

		cookie, err := r.Cookie(SessionCookieName)
		if assert.NoError(t, err, "query request must carry the session cookie") {
			assert.Equal(t, cookieValue, cookie.Value, "session cookie must match the one issued at login")
		}

		handler, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
}

// EnvelopeHandler returns a handler that writes body with the given status.
func EnvelopeHandler(t *testing.T, body string, statusCode int) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(body))
		require.NoError(t, err, "Failed to write response body")
	}
}
