package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAppID is returned by Validate when proxy mode has no upstream API key.
var ErrMissingAppID = errors.New("proxy mode enabled but proxy.user.appId is not set")

type AppConfig struct {
	// ProxyEnabled selects PROXY mode; otherwise weather is generated locally.
	ProxyEnabled bool
	ProxyURL     string
	ProxyAppID   string

	// Upstream call limits.
	ProxyTimeout   time.Duration
	ProxyRateLimit float64 // requests per second, <= 0 = unlimited
	ProxyBurst     int
	ProxyRetries   int

	// Maximum number of per-location schedules kept in memory (0 = unlimited).
	StoreMaxLocations int

	Port int
}

// Load reads configuration from environment with sensible defaults, then
// applies command-line flags from args on top.
func Load(args []string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	timeout, err := time.ParseDuration(getenvDefault("WEATHER_PROXY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_PROXY_TIMEOUT: %w", err)
	}

	port := getenvInt("SERVER_PORT", getenvInt("PORT", 8080))

	fs := flag.NewFlagSet("owm-weather-mock", flag.ContinueOnError)
	fs.BoolVar(&cfg.ProxyEnabled, "proxy.enabled", getenvBool("WEATHER_PROXY_ENABLED", false), "forward GET requests to the upstream service")
	fs.StringVar(&cfg.ProxyURL, "proxy.url", getenvDefault("WEATHER_PROXY_URL", "https://api.openweathermap.org"), "upstream base URL")
	fs.StringVar(&cfg.ProxyAppID, "proxy.user.appId", os.Getenv("WEATHER_PROXY_USER_APPID"), "upstream API key (required in proxy mode)")
	fs.DurationVar(&cfg.ProxyTimeout, "proxy.timeout", timeout, "upstream request timeout")
	fs.Float64Var(&cfg.ProxyRateLimit, "proxy.rateLimit", getenvFloat("WEATHER_PROXY_RATE_LIMIT", 1), "upstream requests per second (<= 0 for unlimited)")
	fs.IntVar(&cfg.ProxyBurst, "proxy.burst", getenvInt("WEATHER_PROXY_BURST", 5), "upstream request burst")
	fs.IntVar(&cfg.ProxyRetries, "proxy.retries", getenvInt("WEATHER_PROXY_RETRIES", 0), "automatic retries of failed upstream requests")
	fs.IntVar(&cfg.StoreMaxLocations, "store.maxLocations", getenvInt("STORE_MAX_LOCATIONS", 256), "maximum per-location schedules")
	fs.IntVar(&cfg.Port, "server.port", port, "HTTP listen port")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid server.port %d", cfg.Port)
	}

	return cfg, nil
}

// Validate checks cross-field constraints that must hold before the server starts.
func (c *AppConfig) Validate() error {
	if c.ProxyEnabled && c.ProxyAppID == "" {
		return ErrMissingAppID
	}
	if c.ProxyEnabled && c.ProxyURL == "" {
		return errors.New("proxy mode enabled but proxy.url is empty")
	}
	return nil
}

// Mode names the operating mode for logs and the health endpoint.
func (c *AppConfig) Mode() string {
	if c.ProxyEnabled {
		return "proxy"
	}
	return "local"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
