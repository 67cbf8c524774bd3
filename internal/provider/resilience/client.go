// Package resilience provides an HTTP client with retry and circuit breaker
// protection for third-party data providers. The geo.admin.ch clients do not
// use it: their lookups are single-attempt by design.
package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Resilient client errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the client for circuit breaker bookkeeping.
	Name string

	// Timeout is the per-request timeout. Default: 10s.
	Timeout time.Duration

	// MaxRetries bounds retry attempts after the first request. Default: 3.
	MaxRetries uint64

	// InitialInterval is the first retry backoff delay. Default: 200ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff delay. Default: 5s.
	MaxInterval time.Duration
}

// Client wraps http.Client with exponential-backoff retries on transient
// failures (network errors, 5xx) and a circuit breaker that opens after
// consecutive failures.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// serverError marks a 5xx response so the breaker and the retry loop treat it
// as a failure.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.statusCode, http.StatusText(e.statusCode))
}

// Do executes the request, retrying transient failures with exponential
// backoff. 4xx responses are returned as-is; 5xx responses are retried and
// the last one is returned if retries run out. Returns ErrCircuitOpen
// immediately while the breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), req.Context())

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, err := c.httpClient.Do(req.Clone(req.Context()))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &serverError{statusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// State exposes the breaker state for health reporting.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
