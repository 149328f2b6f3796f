// Package upstream performs outbound catalog requests behind a circuit breaker.
//
// Every failure is reported as either a *StatusError (the upstream answered
// with a non-2xx status) or a *TransportError (no usable answer: network,
// decoding, open breaker). Callers relay the former and map the latter to 500.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/icco/moodpick/lib/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const maxBodyBytes = 8 << 20

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Upstream, e.StatusCode)
}

// TransportError is returned when no usable response was obtained. It never
// carries the request URL, which holds the API key.
type TransportError struct {
	Upstream string
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Upstream, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Options configures a Client.
type Options struct {
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	name       string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

func New(name string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{
		name:       name,
		httpClient: httpClient,
		logger:     logger.With(slog.String("upstream", name)),
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state change",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// 4xx means the upstream is healthy and the request was wrong.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})

	return c
}

func (c *Client) Name() string { return c.name }

// State returns the breaker state as "closed", "half-open" or "open".
func (c *Client) State() string { return c.cb.State().String() }

// GetJSON issues a GET and decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.ErrorContext(ctx, "Failed to decode upstream response", slog.Any("error", err))
		return &TransportError{Upstream: c.name, Op: "decode", Err: err}
	}
	return nil
}

// Get issues a GET and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, rawURL)
	})
	metrics.UpstreamDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	var se *StatusError
	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(c.name, "ok").Inc()
		return body, nil
	case errors.As(err, &se):
		metrics.UpstreamRequests.WithLabelValues(c.name, "status").Inc()
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.UpstreamRequests.WithLabelValues(c.name, "rejected").Inc()
		c.logger.WarnContext(ctx, "Request rejected by circuit breaker", slog.Any("error", err))
		return nil, &TransportError{Upstream: c.name, Op: "breaker", Err: err}
	default:
		metrics.UpstreamRequests.WithLabelValues(c.name, "transport").Inc()
		return nil, err
	}
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Op: "build request", Err: stripURL(err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Op: "request", Err: stripURL(err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("Failed to close response body", slog.Any("error", err))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Upstream: c.name, StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

// stripURL drops the *url.Error wrapper so the key-bearing URL never reaches
// logs or responses.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
