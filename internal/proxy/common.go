package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls how failed upstream calls are retried.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// delay is the wait before retry number attempt (0-based), doubling each time.
func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval << attempt
	if b.MaxInterval > 0 && (d > b.MaxInterval || d <= 0) {
		d = b.MaxInterval
	}
	return d
}

// HTTPClientConfig bundles the outbound client with its retry policy.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// ErrUpstreamUnavailable is matched by every error the proxy returns.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
	errBadBackoff   = errors.New("invalid backoff configuration")
)

// UpstreamError describes a failed upstream call. StatusCode is zero when no
// response was received.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream unavailable: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream unavailable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// fetchBody performs one GET and returns the body of a 2xx response.
func fetchBody(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	return body, nil
}

// doRequestWithResilience sends the request built by newRequest through the
// circuit breaker and retries failures with exponential backoff, at most
// cfg.Backoff.MaxRetries times. An open breaker is never retried.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	newRequest func(context.Context) (*http.Request, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errBadBackoff
	}

	for attempt := 0; ; attempt++ {
		req, err := newRequest(ctx)
		if err != nil {
			return nil, err
		}

		out, err := cb.Execute(func() (interface{}, error) {
			return fetchBody(cfg.Client, req)
		})
		switch {
		case err == nil:
			return out.([]byte), nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, &UpstreamError{Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		case attempt >= cfg.Backoff.MaxRetries:
			return nil, err
		}

		wait := time.NewTimer(cfg.Backoff.delay(attempt))
		select {
		case <-ctx.Done():
			wait.Stop()
			return nil, &UpstreamError{Err: ctx.Err()}
		case <-wait.C:
		}
	}
}
