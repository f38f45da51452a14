// Package client provides the HTTP transport for the reqres API: base URL
// resolution, default headers and an exponential backoff retry policy for
// transient failures.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/reqres-client/pkg/logging"
)

// Prometheus metrics for transport operations.
var (
	reqresRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqres_requests_total",
		Help: "Total reqres HTTP attempts by status",
	}, []string{"status"})

	reqresRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reqres_request_duration_seconds",
		Help:    "reqres request duration in seconds, retries included",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	reqresErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqres_errors_total",
		Help: "Total reqres attempt failures by class",
	}, []string{"class"})

	reqresRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqres_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	reqresRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reqres_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	reqresRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reqres_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// Header names sent with every request.
const (
	HeaderAPIKey    = "x-api-key"
	HeaderRequestID = "X-Request-Id"
)

// DefaultUserAgent identifies the client when Config.UserAgent is empty.
const DefaultUserAgent = "reqres-client/0.1.0"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://reqres.in/api/". Required.
	BaseURL string

	// APIKey is sent as x-api-key when set.
	APIKey string

	// UserAgent header; DefaultUserAgent when empty.
	UserAgent string

	// Timeout bounds each attempt.
	Timeout time.Duration

	// Retry is the backoff policy for transient failures.
	Retry RetryConfig

	// HTTPClient overrides the underlying client (tests). Its Timeout is left as is.
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration for baseURL with the default retry policy.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs GET requests against the configured base URL.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %v)", cfg.Timeout)
	}

	if err := cfg.Retry.validate(); err != nil {
		return nil, err
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		config:     cfg,
		logger:     logging.NewLogger("reqres-client"),
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get requests path relative to the base URL with optional query parameters.
//
// A transient status (5xx, 408) that survives every retry is returned as a
// Response, not an error, so callers classify it themselves. Transport faults
// are returned as errors; after retries they wrap ErrRetryExhausted.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	target := endpoint.String()

	startTime := time.Now()
	defer func() {
		reqresRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	var last *Response

	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func(attempt int) (ErrorClass, error) {
		last = nil

		resp, err := c.do(ctx, target, attempt)
		if err != nil {
			reqresErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			reqresRequestsTotal.WithLabelValues("network_error").Inc()
			return ErrorClassNetwork, err
		}

		last = resp
		reqresRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		errClass := ClassifyStatus(resp.StatusCode)
		if errClass == "" {
			return "", nil
		}
		reqresErrorsTotal.WithLabelValues(string(errClass)).Inc()

		if !shouldRetry(errClass) {
			// Let the caller interpret 4xx.
			return "", nil
		}

		return errClass, &StatusError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    http.StatusText(resp.StatusCode),
		}
	})

	if retryErr != nil {
		if last != nil && errors.Is(retryErr, ErrRetryExhausted) {
			c.logger.Warn().
				Str("url", target).
				Int(logging.FieldStatusCode, last.StatusCode).
				Msg("Returning last response after retries")
			return last, nil
		}
		return nil, retryErr
	}

	return last, nil
}

// do performs a single attempt and reads the whole body.
func (c *Client) do(ctx context.Context, target string, attempt int) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if c.config.APIKey != "" {
		req.Header.Set(HeaderAPIKey, c.config.APIKey)
	}

	c.logger.Debug().
		Str("url", target).
		Str(logging.FieldRequestID, requestID).
		Int(logging.FieldAttempt, attempt).
		Msg("Executing reqres request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", target).Msg("HTTP request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}
