package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/owm-weather-mock/internal/api/http"
	"github.com/i474232898/owm-weather-mock/internal/config"
	"github.com/i474232898/owm-weather-mock/internal/proxy"
	"github.com/i474232898/owm-weather-mock/internal/store"
	"github.com/i474232898/owm-weather-mock/internal/weather"
)

const (
	exitOK         = 0
	exitMisconfig  = 1
	exitListenFail = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Load configuration.
	cfg, err := config.Load(args)
	if err != nil {
		log.Printf("FATAL: failed to load config: %v", err)
		return exitMisconfig
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("FATAL: %v. Start in local mode, or provide an API key with --proxy.user.appId=[your API key]", err)
		return exitMisconfig
	}

	// In-memory schedule store; the generator reads it on every request.
	memStore := store.NewMemoryStore(cfg.StoreMaxLocations, nil)

	var client *proxy.Client
	if cfg.ProxyEnabled {
		// Shared HTTP client for outbound upstream calls.
		httpClient := &http.Client{
			Timeout: cfg.ProxyTimeout,
		}
		client = proxy.NewClient(httpClient, proxy.Config{
			BaseURL:       cfg.ProxyURL,
			AppID:         cfg.ProxyAppID,
			Timeout:       cfg.ProxyTimeout,
			RatePerSecond: cfg.ProxyRateLimit,
			Burst:         cfg.ProxyBurst,
			MaxRetries:    cfg.ProxyRetries,
		})
		log.Printf("INFO: Running in proxy mode, using %s at %s", client.Name(), cfg.ProxyURL)
	} else {
		log.Println("INFO: Running in local mode, weather data will be generated locally")
	}

	app := newApp(cfg, memStore, client)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()
	log.Printf("INFO: listening on :%d", cfg.Port)

	select {
	case err := <-listenErr:
		log.Printf("FATAL: fiber server stopped: %v", err)
		return exitListenFail
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return exitOK
}

// newApp builds the fiber app. A nil client means LOCAL mode.
func newApp(cfg *config.AppConfig, memStore *store.MemoryStore, client *proxy.Client) *fiber.App {
	service := weather.NewService(memStore)

	var upstream httpapi.Upstream
	if client != nil {
		upstream = client
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "owm-weather-mock",
		ServerHeader:          "openresty",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":    "ok",
			"service":   "owm-weather-mock",
			"mode":      cfg.Mode(),
			"locations": len(memStore.Locations()),
		}
		if client != nil {
			status["upstream"] = client.Name()
		}
		return c.JSON(status)
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, upstream)
	return app
}
