package controller

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnknownQuery marks errors returned when a query name is not in the
// registry. The check happens before any network I/O.
var ErrUnknownQuery = errors.New("unknown query")

// AuthError reports a rejected login or a query attempted without a session.
// Nothing about it is retryable within an invocation.
type AuthError struct {
	// StatusCode is the HTTP status of the login response, or zero when no
	// request was made (Execute before Login).
	StatusCode int

	// Message is the controller-reported message, if any.
	Message string
}

func (e *AuthError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("authentication failed: %s (status=%d)", e.Message, e.StatusCode)
	case e.Message != "":
		return "authentication failed: " + e.Message
	default:
		return fmt.Sprintf("authentication failed: status=%d", e.StatusCode)
	}
}

// QueryError reports a controller-side failure for a supported query: the
// controller answered with a parseable envelope carrying rc == "error".
// Message is the controller's message verbatim (e.g. "api.err.Invalid").
type QueryError struct {
	Query      Query
	StatusCode int
	Message    string
}

func (e *QueryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("query %s failed: controller returned an error (status=%d)", e.Query, e.StatusCode)
	}
	return fmt.Sprintf("query %s failed: %s", e.Query, e.Message)
}

// TransportError reports a network/TLS failure or a response the controller
// envelope could not be parsed from.
type TransportError struct {
	// StatusCode is the HTTP status when a response was received, zero otherwise.
	StatusCode int

	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error: status=%d", e.StatusCode)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error (status=%d): %v", e.StatusCode, e.Err)
	}
	return "transport error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
