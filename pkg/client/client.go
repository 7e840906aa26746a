// Package client provides the HTTP client shared by the Sunlight service bindings:
// URL building with the apikey parameter, JSON decoding, status code mapping and
// optional API key quota tracking.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sunlightlabs/sunlight-go/pkg/logging"
	"github.com/sunlightlabs/sunlight-go/pkg/ratelimit"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sunlight_requests_total",
		Help: "Total Sunlight API requests by service and status",
	}, []string{"service", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sunlight_request_duration_seconds",
		Help:    "Sunlight API request duration in seconds by service",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"service"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sunlight_errors_total",
		Help: "Total Sunlight API errors by class",
	}, []string{"class"})
)

// Client performs requests against the Sunlight APIs.
type Client struct {
	httpClient *http.Client
	quota      *ratelimit.Tracker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// APIKey is sent as the apikey query parameter (REQUIRED).
	APIKey string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// HTTPClient overrides the default transport.
	HTTPClient *http.Client

	// Redis enables shared API key quota tracking when set.
	Redis *redis.Client
}

// DefaultConfig returns a default configuration for apiKey.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:    apiKey,
		UserAgent: "sunlight-go/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	logger := logging.NewLogger(logging.ComponentClient)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     logger,
	}

	if cfg.Redis != nil {
		c.quota = ratelimit.NewTracker(cfg.Redis, ratelimit.Namespace(cfg.APIKey), logger)
	}

	return c, nil
}

// URL returns the request URL for path under ep.
func (c *Client) URL(ep Endpoint, path []string, params url.Values) string {
	return buildURL(ep, c.config.APIKey, path, params)
}

// Get performs a GET request for path under ep and decodes the JSON body.
func (c *Client) Get(ctx context.Context, ep Endpoint, path []string, params url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(ep, path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(ep, req)
}

// Do executes req against ep: quota check, request, status mapping and decoding.
func (c *Client) Do(ep Endpoint, req *http.Request) (*Response, error) {
	ctx := req.Context()
	logger := logging.ForService(c.logger, ep.Name)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(ep.Name).Observe(time.Since(startTime).Seconds())
	}()

	if c.quota != nil {
		allowed, err := c.quota.ShouldAllowRequest(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Quota check failed")
			return nil, fmt.Errorf("quota check: %w", err)
		}
		if !allowed {
			requestsTotal.WithLabelValues(ep.Name, "quota_blocked").Inc()
			return nil, ErrQuotaExhausted
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	logger.Debug().
		Str("path", req.URL.Path).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(ep.Name, "network_error").Inc()
		return nil, &APIError{
			Service:    ep.Name,
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	requestsTotal.WithLabelValues(ep.Name, status).Inc()

	if c.quota != nil {
		if err := c.quota.UpdateFromHeaders(ctx, resp.Header); err != nil {
			logger.Warn().Err(err).Msg("Failed to update quota from headers")
		}
	}

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Sunlight API request error")

		return nil, &APIError{
			Service:    ep.Name,
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    ep.Message(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			Service:    ep.Name,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	decoded, err := decodeResponse(resp.StatusCode, body)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to decode response")
		return nil, err
	}

	return decoded, nil
}

// Ping checks the quota store when one is configured.
func (c *Client) Ping(ctx context.Context) error {
	if c.config.Redis == nil {
		return nil
	}
	return c.config.Redis.Ping(ctx).Err()
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
