package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/kenmoini/go-unifi-facts/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	urlStr := req.URL.String()

	t.logger.Debug("http request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "url", Value: urlStr},
		observability.Field{Key: "path", Value: req.URL.Path},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("http request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: urlStr},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)

		t.metrics.RecordError("http_request", "NetworkError")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "url", Value: urlStr},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	// Record metrics with normalized path to avoid unbounded cardinality
	normalizedPath := normalizePath(req.URL.Path)
	t.metrics.RecordHTTPRequest(req.Method, normalizedPath, resp.StatusCode, duration)

	return resp, nil
}

var (
	// sitePattern matches the site segment of controller paths: /api/s/{site}/...
	sitePattern = regexp.MustCompile(`^/api/s/[^/]+`)
	// idPattern matches trailing MAC addresses and 24-hex object IDs that the
	// per-device and REST config queries append to their paths.
	idPattern = regexp.MustCompile(`(?i)/(?:[0-9a-f]{2}(?::[0-9a-f]{2}){5}|[0-9a-f]{24})/?$`)

	// normalizedPathCache caches normalized paths; a single invocation touches
	// at most two distinct paths, but long-lived callers reuse clients.
	normalizedPathCache sync.Map
)

// normalizePath replaces the site name and any trailing MAC/object ID with
// placeholders so metric labels stay bounded.
//
// Examples:
//   - /api/s/default/stat/device/aa:bb:cc:dd:ee:ff -> /api/s/:site/stat/device/:id
//   - /api/s/branch1/rest/wlanconf/5c9f8e2a1b3d4f0011223344 -> /api/s/:site/rest/wlanconf/:id
func normalizePath(path string) string {
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings, type assertion is safe
		return cached.(string)
	}

	normalized := sitePattern.ReplaceAllString(path, "/api/s/:site")
	normalized = idPattern.ReplaceAllString(normalized, "/:id")

	normalizedPathCache.Store(path, normalized)

	return normalized
}
