package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WEATHER_PROXY_ENABLED", "WEATHER_PROXY_URL", "WEATHER_PROXY_USER_APPID",
		"WEATHER_PROXY_TIMEOUT", "WEATHER_PROXY_RATE_LIMIT", "WEATHER_PROXY_BURST",
		"WEATHER_PROXY_RETRIES", "STORE_MAX_LOCATIONS", "SERVER_PORT", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProxyEnabled {
		t.Errorf("expected local mode by default")
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.ProxyTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.ProxyTimeout)
	}
	if cfg.ProxyRetries != 0 {
		t.Errorf("expected no retries, got %d", cfg.ProxyRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Mode() != "local" {
		t.Errorf("expected local mode, got %s", cfg.Mode())
	}
}

func TestLoadEnvAndFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_PROXY_ENABLED", "true")
	t.Setenv("WEATHER_PROXY_USER_APPID", "from-env")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load([]string{"-proxy.user.appId=from-flag", "-proxy.url=http://upstream.local"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.ProxyEnabled {
		t.Errorf("expected proxy mode from env")
	}
	if cfg.ProxyAppID != "from-flag" {
		t.Errorf("flag should override env, got %q", cfg.ProxyAppID)
	}
	if cfg.ProxyURL != "http://upstream.local" {
		t.Errorf("unexpected proxy url %q", cfg.ProxyURL)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidateMissingAppID(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"-proxy.enabled=true"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAppID) {
		t.Fatalf("expected ErrMissingAppID, got %v", err)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)

	if _, err := Load([]string{"-server.port=0"}); err == nil {
		t.Errorf("expected error for port 0")
	}

	t.Setenv("WEATHER_PROXY_TIMEOUT", "soon")
	if _, err := Load(nil); err == nil {
		t.Errorf("expected error for invalid timeout")
	}
}
