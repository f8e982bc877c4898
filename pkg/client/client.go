// Package client provides the storefront's HTTP client: one explicit value
// per process that attaches the session token, normalizes failures into
// *Error and records request metrics.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/logging"
)

// Prometheus metrics for storefront client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_requests_total",
		Help: "Total storefront backend requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_request_duration_seconds",
		Help:    "Storefront backend request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_errors_total",
		Help: "Total storefront request failures by kind",
	}, []string{"kind"})
)

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const requestIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// TokenSource supplies the bearer token for protected calls. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the storefront REST backend (e.g. http://localhost:3000)
	BaseURL string

	// User-Agent header
	UserAgent string

	// Timeout bounds each request, including reading the body
	Timeout time.Duration

	// Session supplies the bearer token. Nil means anonymous only.
	Session TokenSource

	// HTTPClient overrides the default transport (tests, proxies)
	HTTPClient *http.Client

	// Logger defaults to the global zerolog logger
	Logger *zerolog.Logger
}

// DefaultConfig returns a default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "neostore-client/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// Client talks to the storefront backend.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// New creates a new storefront client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := log.With().Str("component", logging.ComponentClient).Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", logging.ComponentClient).Logger()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil
	Body any
	// Anonymous calls never carry the bearer token
	Anonymous bool
	// Endpoint is the metrics label; defaults to Path. Set it for paths
	// carrying IDs (e.g. "/product/:id").
	Endpoint string
}

// Response is a successful backend answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Do performs the request. A response with status >= 400 and a transport
// failure are both returned as *Error; nothing is retried.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = r.Path
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Msg("Executing storefront request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The caller gave up; that is not the backend's fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			requestsTotal.WithLabelValues(endpoint, "cancelled").Inc()
			return nil, fmt.Errorf("%s %s: %w", req.Method, endpoint, ctxErr)
		}

		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Backend unreachable")
		errorsTotal.WithLabelValues(string(KindUnreachable)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, unreachable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(KindUnreachable)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, unreachable(fmt.Errorf("read response body: %w", err))
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		berr := backendError(resp.StatusCode, body)
		errorsTotal.WithLabelValues(string(KindBackend)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("message", berr.Message).
			Msg("Backend request error")
		return nil, berr
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := c.baseURL.JoinPath(r.Path)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, err := nanoid.Generate(requestIDAlphabet, 16); err == nil {
		req.Header.Set(RequestIDHeader, id)
	}
	if !r.Anonymous && c.config.Session != nil {
		if token := strings.TrimSpace(c.config.Session.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// Doer performs one backend request. *Client implements it; services
// accept it so tests can swap the transport.
type Doer interface {
	Do(ctx context.Context, r Request) (*Response, error)
}

// Get performs r as a GET and returns the raw body.
func Get(ctx context.Context, d Doer, r Request) ([]byte, error) {
	r.Method = http.MethodGet
	resp, err := d.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// SendJSON performs r and decodes the answer into out. A nil out or an
// empty body skips decoding.
func SendJSON(ctx context.Context, d Doer, r Request, out any) error {
	resp, err := d.Do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}
