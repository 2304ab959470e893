package proxy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Endpoint is one of the upstream /data/2.5 resources.
type Endpoint string

const (
	EndpointWeather  Endpoint = "weather"
	EndpointForecast Endpoint = "forecast"
)

// forecastCount is the number of 3-hour steps requested from upstream.
const forecastCount = 8

// Config holds the upstream settings.
type Config struct {
	BaseURL string
	AppID   string

	// Timeout bounds each Fetch, including any wait on the rate limiter.
	Timeout time.Duration

	// RatePerSecond <= 0 disables rate limiting.
	RatePerSecond float64
	Burst         int

	// MaxRetries is 0 unless automatic retries are explicitly wanted.
	MaxRetries int
}

// Client forwards weather and forecast requests to OpenWeatherMap with the
// configured API key, returning the upstream XML body verbatim.
type Client struct {
	name    string
	baseURL string
	appID   string
	timeout time.Duration
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewClient creates a Client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather-proxy",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
	})

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		name:    "openweathermap",
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		timeout: timeout,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Backoff: BackoffConfig{
				MaxRetries:      max(cfg.MaxRetries, 0),
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *Client) Name() string {
	return c.name
}

// Fetch issues GET {baseURL}/data/2.5/{endpoint} for the caller's coordinates
// and returns the upstream body unchanged.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint, lat, lon float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}

	newRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("mode", "xml")
		values.Set("APPID", c.appID)
		if endpoint == EndpointForecast {
			values.Set("cnt", strconv.Itoa(forecastCount))
		}

		u := fmt.Sprintf("%s/data/2.5/%s?%s", c.baseURL, endpoint, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, newRequest)
	if err != nil {
		log.Printf("ERROR: %s %s request failed: %v", c.name, endpoint, err)
		if !errors.Is(err, ErrUpstreamUnavailable) {
			err = &UpstreamError{Err: err}
		}
		return nil, err
	}

	log.Printf("INFO: got %s from %s (%d bytes)", endpoint, c.name, len(body))
	return body, nil
}
