package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/owm-weather-mock/internal/config"
	"github.com/i474232898/owm-weather-mock/internal/proxy"
	"github.com/i474232898/owm-weather-mock/internal/store"
	"github.com/i474232898/owm-weather-mock/internal/weather"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"WEATHER_PROXY_ENABLED", "WEATHER_PROXY_USER_APPID", "SERVER_PORT", "PORT"} {
		t.Setenv(k, "")
	}
}

func TestRunFailsWithoutProxyAppID(t *testing.T) {
	clearEnv(t)

	if code := run([]string{"-proxy.enabled=true"}); code != exitMisconfig {
		t.Fatalf("expected exit code %d, got %d", exitMisconfig, code)
	}
}

func TestRunFailsOnBadFlags(t *testing.T) {
	if code := run([]string{"-no.such.flag"}); code != exitMisconfig {
		t.Fatalf("expected exit code %d, got %d", exitMisconfig, code)
	}
}

func TestRunFailsWhenPortIsTaken(t *testing.T) {
	clearEnv(t)

	ln, err := net.Listen("tcp4", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	if code := run([]string{fmt.Sprintf("-server.port=%d", port)}); code != exitListenFail {
		t.Fatalf("expected exit code %d, got %d", exitListenFail, code)
	}
}

func TestHealthReportsModeAndLocations(t *testing.T) {
	memStore := store.NewMemoryStore(10, nil)
	loc := weather.Location{Lat: 10, Lon: 20}
	if _, err := memStore.PutFromSlots(&loc, 60, []string{"12"}); err != nil {
		t.Fatalf("PutFromSlots: %v", err)
	}
	client := proxy.NewClient(&http.Client{}, proxy.Config{BaseURL: "http://127.0.0.1:1", AppID: "k"})
	app := newApp(&config.AppConfig{ProxyEnabled: true}, memStore, client)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Status    string `json:"status"`
		Mode      string `json:"mode"`
		Locations int    `json:"locations"`
		Upstream  string `json:"upstream"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Mode != "proxy" || body.Locations != 1 || body.Upstream != "openweathermap" {
		t.Errorf("unexpected health %+v", body)
	}
}

func TestHealthInLocalMode(t *testing.T) {
	app := newApp(&config.AppConfig{}, store.NewMemoryStore(0, nil), nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["mode"] != "local" {
		t.Errorf("expected local mode, got %v", body["mode"])
	}
	if _, ok := body["upstream"]; ok {
		t.Errorf("local mode should not report an upstream")
	}
}
