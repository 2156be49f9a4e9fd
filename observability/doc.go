// Package observability provides interfaces for logging and metrics collection
// in the go-unifi-facts library.
//
// This package defines standard interfaces that allow users to integrate their
// own logging and metrics implementations with the controller client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := observability.NewZerologLogger(zerolog.New(os.Stderr))
//	client, err := controller.NewWithConfig(&controller.ClientConfig{
//		BaseURL:  "https://unifi.local:8443",
//		Username: "readonly",
//		Password: "secret",
//		Logger:   logger,
//	})
//
// Supported log levels:
//   - Debug: Detailed diagnostic information (every HTTP request/response)
//   - Info: General informational messages
//   - Warn: Warning messages for potentially problematic situations
//   - Error: Error messages for failures
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks API client metrics:
//
//	metrics := observability.NewPrometheusRecorder(prometheus.DefaultRegisterer)
//	client, err := controller.NewWithConfig(&controller.ClientConfig{
//		BaseURL:  "https://unifi.local:8443",
//		Username: "readonly",
//		Password: "secret",
//		Metrics:  metrics,
//	})
//
// Tracked metrics include:
//   - HTTP request count, status codes, and duration
//   - Rate limiting events and wait times
//   - Error occurrences by type
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events. This ensures zero overhead
// when observability is not needed.
package observability
