package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const currentXML = `<?xml version="1.0" encoding="UTF-8"?>
<current><city id="2643743" name="London"></city></current>`

func newTestClient(baseURL string, retries int) *Client {
	return NewClient(&http.Client{}, Config{
		BaseURL:    baseURL,
		AppID:      "server-key",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
	})
}

func TestFetchForwardsQueryAndBody(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotQuery = map[string]string{
			"APPID": q.Get("APPID"),
			"lat":   q.Get("lat"),
			"lon":   q.Get("lon"),
			"mode":  q.Get("mode"),
			"cnt":   q.Get("cnt"),
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write([]byte(currentXML))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL+"/", 0)
	body, err := c.Fetch(context.Background(), EndpointWeather, 51.5, -0.12)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != currentXML {
		t.Errorf("body not forwarded verbatim: %q", body)
	}
	if gotPath != "/data/2.5/weather" {
		t.Errorf("unexpected path %q", gotPath)
	}
	want := map[string]string{"APPID": "server-key", "lat": "51.5", "lon": "-0.12", "mode": "xml", "cnt": ""}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestFetchForecastRequestsEightSteps(t *testing.T) {
	var gotPath, gotCnt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCnt = r.URL.Query().Get("cnt")
		w.Write([]byte("<weatherdata></weatherdata>"))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL, 0).Fetch(context.Background(), EndpointForecast, 0, 0); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/data/2.5/forecast" || gotCnt != "8" {
		t.Errorf("unexpected request path=%q cnt=%q", gotPath, gotCnt)
	}
}

func TestFetchUpstreamFailure(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL, 0).Fetch(context.Background(), EndpointWeather, 1, 2)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected UpstreamError with status 500, got %#v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected a single upstream call without retries, got %d", n)
	}
}

func TestFetchRetriesWhenConfigured(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(currentXML))
	}))
	defer ts.Close()

	body, err := newTestClient(ts.URL, 1).Fetch(context.Background(), EndpointWeather, 1, 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != currentXML {
		t.Errorf("unexpected body %q", body)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 upstream calls, got %d", n)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := NewClient(&http.Client{}, Config{BaseURL: ts.URL, AppID: "k", Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), EndpointWeather, 0, 0)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.StatusCode != 0 {
		t.Errorf("timeout should carry no status, got %d", ue.StatusCode)
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{StatusCode: 500, Err: errors.New("unexpected status 500")}
	if got := err.Error(); got != "upstream unavailable: status 500" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestBackoffDelay(t *testing.T) {
	b := BackoffConfig{InitialInterval: 500 * time.Millisecond, MaxInterval: 5 * time.Second}
	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for attempt, w := range want {
		if got := b.delay(attempt); got != w {
			t.Errorf("delay(%d) = %s, want %s", attempt, got, w)
		}
	}
}
