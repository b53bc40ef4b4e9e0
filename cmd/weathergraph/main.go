package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/austindatascientist/weather-graph/internal/api/http"
	"github.com/austindatascientist/weather-graph/internal/config"
	"github.com/austindatascientist/weather-graph/internal/graph"
	"github.com/austindatascientist/weather-graph/internal/ingest"
	"github.com/austindatascientist/weather-graph/internal/location"
	"github.com/austindatascientist/weather-graph/internal/scheduler"
	"github.com/austindatascientist/weather-graph/internal/store"
	"github.com/austindatascientist/weather-graph/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres pool with the AGE extension loaded per connection; backs
	// both the relational rows and the property graph.
	pool, err := graph.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database pool", "err", err)
	}
	defer pool.Close()

	graphStore := graph.NewStore(pool, cfg.GraphName)
	if err := graphStore.EnsureGraph(ctx); err != nil {
		log.Fatal("failed to ensure graph", "graph", cfg.GraphName, "err", err)
	}

	forecastRows := store.NewForecastStore(pool)
	if err := forecastRows.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to ensure relational schema", "err", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Geocoding: Nominatim by default, Google when an API key is set.
	var resolver location.Resolver
	if cfg.GoogleAPIKey != "" {
		resolver = location.NewGoogleProvider(cfg.GoogleAPIKey)
		log.Info("using Google geocoding provider")
	} else {
		resolver = location.NewNominatimProvider(httpClient, cfg.NominatimBaseURL, cfg.UserAgent)
	}

	nws := providers.NewNWSClient(httpClient, cfg.NWSBaseURL, cfg.UserAgent)

	builder := graph.NewBuilder(resolver, nws, graphStore, cfg.NearThresholdKM)

	if cfg.SeedSampleData {
		if err := builder.SeedSampleTopology(ctx, graph.DefaultSeedDays); err != nil {
			log.Fatal("failed to seed sample topology", "err", err)
		}
	}

	// Ingestion pipeline and its scheduler.
	service := ingest.NewService(resolver, nws, forecastRows, builder)
	sched := scheduler.New(cfg.IngestLocations, cfg.IngestInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", "err", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-graph",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(httpapi.RequestID())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-graph",
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		if err := forecastRows.Ping(c.Context()); err != nil {
			log.Error("database readiness check failed", "err", err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Builder:   builder,
		Graph:     graphStore,
		Forecasts: forecastRows,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
}
