package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/passbi/transitmap/internal/api"
	"github.com/passbi/transitmap/internal/cache"
	"github.com/passbi/transitmap/internal/dataset"
	"github.com/passbi/transitmap/internal/db"
	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/logging"
	"github.com/passbi/transitmap/internal/middleware"
	"github.com/passbi/transitmap/internal/planner"
	"github.com/passbi/transitmap/internal/routing"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	log.Println("Starting TransitMap API server...")

	logger := logging.New(logging.LoadConfigFromEnv())

	enableCache := getEnvBool("ENABLE_CACHE", true)
	enableRateLimit := getEnvBool("ENABLE_RATE_LIMIT", true)
	enableAnalytics := getEnvBool("ENABLE_ANALYTICS", true)
	log.Printf("Configuration: Cache=%v, RateLimit=%v, Analytics=%v", enableCache, enableRateLimit, enableAnalytics)

	// Load the network from a dataset directory or from the database
	var dbHealth api.DatabaseCheck
	network, err := loadNetwork(&dbHealth)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}
	defer db.Close()
	log.Printf("✓ Network loaded: %d stops, %d routes", len(network.Stops()), len(network.Routes()))

	penalty := routing.LoadConfigFromEnv().BoardingPenalty
	service := planner.New(network, penalty, logger)

	cfg := api.ServerConfig{
		AdminToken: os.Getenv("ADMIN_TOKEN"),
		AccessLog:  getEnvBool("ACCESS_LOG", true),
	}
	if enableAnalytics {
		cfg.Audit = logger.With("component", "audit")
	}
	if cfg.AdminToken == "" {
		log.Println("⚠ ADMIN_TOKEN not set, network edits are unprotected")
	}

	// Redis is optional: without it results are only shared within this process
	var itineraries api.ItineraryCache
	if enableCache || enableRateLimit {
		rdb, err := cache.GetClient()
		if err != nil {
			log.Printf("⚠ Redis unavailable, running without cache and rate limit: %v", err)
		} else {
			defer cache.Close()
			log.Println("✓ Redis connection established")
			if enableCache {
				itineraries = cache.NewStore(rdb, cache.LoadConfigFromEnv())
			}
			if enableRateLimit {
				cfg.RateLimit = middleware.RateLimitMiddleware(rdb, middleware.LoadRateLimitConfigFromEnv())
			}
		}
	}

	handler := api.NewHandler(service, itineraries, dbHealth)
	app := api.NewApp(handler, cfg)

	port := getEnv("API_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Route search: http://localhost%s/v1/route-search?from=NAME&to=NAME", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadNetwork reads DATASET_DIR when set and PostgreSQL otherwise. The
// database health check is only installed in the second case.
func loadNetwork(dbHealth *api.DatabaseCheck) (*graph.TransitMap, error) {
	if dir := os.Getenv("DATASET_DIR"); dir != "" {
		ds, err := dataset.Load(dir)
		if err != nil {
			return nil, err
		}
		report := ds.Clean()
		log.Printf("✓ Dataset %s parsed (%+v)", dir, report)
		return ds.Build()
	}

	pool, err := db.GetDB()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("✓ Database connection established")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ds, err := db.LoadDataset(ctx, pool)
	if err != nil {
		return nil, err
	}
	*dbHealth = db.HealthCheck
	return ds.Build()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
