package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/kenmoini/go-unifi-facts/internal/httpclient"
	"github.com/kenmoini/go-unifi-facts/internal/middleware"
	"github.com/kenmoini/go-unifi-facts/internal/ratelimit"
	"github.com/kenmoini/go-unifi-facts/observability"
)

const (
	// DefaultSite is the site every controller ships with.
	DefaultSite = "default"

	// DefaultRateLimit is the default local request throttle (requests per minute).
	DefaultRateLimit = 1000
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Client is the controller client: one login, one query, optional logout.
type Client struct {
	cfg     *ClientConfig
	baseURL string
	http    *httpclient.Client
	logger  observability.Logger
	metrics observability.MetricsRecorder
	session *Session
}

// Session is the opaque session artifact obtained from login. It lives for
// one invocation and is never persisted.
type Session struct {
	// Cookies are the session cookies the controller issued at login. The
	// client's cookie jar replays them on the query request.
	Cookies []*http.Cookie

	// CreatedAt is when the login succeeded.
	CreatedAt time.Time
}

// ClientConfig holds the connection parameters for one invocation.
type ClientConfig struct {
	// BaseURL is the controller's base URL including port
	// (e.g. "https://192.168.1.1:8443").
	BaseURL string

	// Username and Password authenticate against /api/login.
	Username string
	Password string

	// Site selects the controller site to query (defaults to "default").
	Site string

	// InsecureSkipVerify disables TLS certificate verification. Controllers
	// commonly run on self-signed certificates, so New enables this.
	InsecureSkipVerify bool

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *http.Client

	// RateLimitPerMinute sets the local request throttle (defaults to 1000).
	RateLimitPerMinute int

	// Timeout sets the HTTP client timeout.
	Timeout time.Duration

	// Logger receives structured client logs (defaults to a no-op logger).
	Logger observability.Logger

	// Metrics receives client metrics (defaults to a no-op recorder).
	Metrics observability.MetricsRecorder
}

// New creates a controller client with default settings: site "default",
// TLS verification disabled (self-signed certificates), 30s timeout.
//
// For custom configuration, use NewWithConfig.
//
// Example:
//
//	client, err := controller.New("https://192.168.1.1:8443", "readonly", "secret")
func New(baseURL, username, password string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		BaseURL:            baseURL,
		Username:           username,
		Password:           password,
		InsecureSkipVerify: true, // Default to true for self-signed certs
	})
}

// NewWithConfig creates a controller client with custom configuration.
//
// Example:
//
//	client, err := controller.NewWithConfig(&controller.ClientConfig{
//	    BaseURL:  "https://unifi.example.com:8443",
//	    Username: "readonly",
//	    Password: "secret",
//	    Site:     "branch1",
//	})
func NewWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("controller base URL is required")
	}
	if cfg.Username == "" {
		return nil, errors.New("username is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("password is required")
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid controller base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.Newf("controller base URL must be http or https, got %q", cfg.BaseURL)
	}

	// Set defaults
	if cfg.Site == "" {
		cfg.Site = DefaultSite
	}
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = DefaultRateLimit
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cookie jar")
	}

	tlsConfig := middleware.InsecureSkipVerify()
	if !cfg.InsecureSkipVerify {
		tlsConfig = nil
	}

	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithCookieJar(jar),
		httpclient.WithMiddleware(
			middleware.Observability(logger, metrics),
			middleware.RateLimit(middleware.RateLimitConfig{
				Limiter: ratelimit.NewRateLimiter(cfg.RateLimitPerMinute),
				Logger:  logger,
				Metrics: metrics,
			}),
			middleware.Referer(baseURL+"/login"),
			middleware.TLSConfig(tlsConfig),
		),
	}
	if cfg.HTTPClient != nil {
		opts = append([]httpclient.Option{httpclient.WithHTTPClient(cfg.HTTPClient)}, opts...)
	}

	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		http:    httpclient.New(opts...),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// loginRequest is the credential body posted to /api/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login establishes the authenticated session. It must succeed before
// Execute; the session cookie is retained in the client's cookie jar and
// replayed on the query request.
//
// Returns *AuthError when the controller rejects the credentials or issues
// no session cookie, *TransportError on network/TLS failure.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	payload, err := json.Marshal(loginRequest{Username: c.cfg.Username, Password: c.cfg.Password})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "login request failed")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: errors.Wrap(err, "failed to read login response")}
	}

	env, envErr := decodeEnvelope(body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := "login rejected"
		if envErr == nil && env.Meta.Msg != "" {
			msg = env.Meta.Msg
		}
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: msg}
	}

	if envErr == nil && env.Meta.RC != rcOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: env.Meta.Msg}
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "controller returned no session cookie"}
	}

	c.session = &Session{Cookies: cookies, CreatedAt: time.Now()}

	c.logger.Info("login succeeded",
		observability.Field{Key: "controller", Value: c.baseURL},
		observability.Field{Key: "username", Value: c.cfg.Username},
	)

	return c.session, nil
}

// Execute runs one named query against the configured site and returns the
// controller's data payload unchanged.
//
// Unknown query names are rejected before any network I/O (ErrUnknownQuery).
// Execute without a prior successful Login fails with *AuthError. Controller
// rc=="error" envelopes become *QueryError; network failures and responses
// without a parseable envelope become *TransportError.
func (c *Client) Execute(ctx context.Context, query Query, opts *QueryOptions) (*Result, error) {
	spec, ok := queries[query]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown query %q", string(query)), ErrUnknownQuery)
	}

	if c.session == nil {
		return nil, &AuthError{Message: "not authenticated: Login must succeed before Execute"}
	}

	if opts == nil {
		opts = &QueryOptions{}
	}

	var bodyReader io.Reader
	if spec.body != nil {
		payload, err := json.Marshal(spec.body(opts))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode body for query %s", query)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, c.queryURL(spec, opts), bodyReader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for query %s", query)
	}
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: errors.Wrapf(err, "query %s request failed", query)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: errors.Wrapf(err, "failed to read response for query %s", query)}
	}

	env, envErr := decodeEnvelope(body)
	if envErr != nil {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        errors.Wrapf(envErr, "query %s returned an unparseable response", query),
		}
	}

	if env.Meta.RC != rcOK {
		return nil, &QueryError{Query: query, StatusCode: resp.StatusCode, Message: env.Meta.Msg}
	}

	return &Result{StatusCode: resp.StatusCode, Data: env.Data}, nil
}

// Logout ends the session best-effort. Failures are logged and swallowed:
// the session dies with the process either way.
func (c *Client) Logout(ctx context.Context) {
	if c.session == nil {
		return
	}
	defer func() { c.session = nil }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logout", nil)
	if err != nil {
		c.logger.Warn("logout request could not be built",
			observability.Field{Key: "error", Value: err.Error()})
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("logout failed",
			observability.Field{Key: "error", Value: err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("logout returned an error status",
			observability.Field{Key: "status", Value: resp.StatusCode})
		return
	}

	c.logger.Debug("logout succeeded")
}

// queryURL builds the full request URL for one query: base + site path +
// optional MAC/ID suffix + encoded parameters.
func (c *Client) queryURL(spec querySpec, opts *QueryOptions) string {
	var path string
	if spec.siteless {
		path = spec.path
	} else {
		path = "/api/s/" + url.PathEscape(c.cfg.Site) + spec.path
	}

	if spec.suffix != nil {
		if s := spec.suffix(opts); s != "" {
			path += "/" + url.PathEscape(s)
		}
	}

	full := c.baseURL + path
	if spec.params != nil {
		if v := spec.params(opts); len(v) > 0 {
			full += "?" + v.Encode()
		}
	}

	return full
}
