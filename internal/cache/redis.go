package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/passbi/transitmap/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	MutexTTL time.Duration
	TLS      bool
}

// LoadConfigFromEnv loads Redis configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		ttl = 10 * time.Minute
	}
	mutexTTL, err := time.ParseDuration(getEnv("CACHE_MUTEX_TTL", "5s"))
	if err != nil {
		mutexTTL = 5 * time.Second
	}

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
		MutexTTL: mutexTTL,
		TLS:      getEnv("REDIS_TLS_ENABLED", "false") == "true",
	}
}

// Options converts the config to client options
func (c *Config) Options() *redis.Options {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}

	// Managed Redis offerings usually require TLS
	if c.TLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return opts
}

// GetClient returns the global Redis client (singleton pattern)
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		client = redis.NewClient(LoadConfigFromEnv().Options())

		// Test connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}
	})

	return client, clientErr
}

// Close closes the Redis client
func Close() {
	if client != nil {
		client.Close()
	}
}

// ItineraryKey generates a cache key for an itinerary query. state is the
// planner's StateKey, so an edited network never reads results computed
// before the edit, whichever instance computed them.
func ItineraryKey(state, criterion string, stops []string, transports []models.Transport) string {
	keys := make([]string, 0, len(transports))
	for _, t := range transports {
		keys = append(keys, t.Key())
	}
	data := strings.Join(stops, "\x1f") + "|" + strings.Join(keys, ",")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("itinerary:%s:%x:%s", state, hash[:8], strings.ToLower(criterion))
}

// LockKey generates a mutex lock key
func LockKey(itineraryKey string) string {
	return fmt.Sprintf("lock:%s", itineraryKey)
}

// Store caches computed itineraries in Redis
type Store struct {
	client   *redis.Client
	ttl      time.Duration
	mutexTTL time.Duration
}

// NewStore wraps client using the TTLs of config
func NewStore(client *redis.Client, config *Config) *Store {
	return &Store{client: client, ttl: config.TTL, mutexTTL: config.MutexTTL}
}

// GetItinerary retrieves a cached itinerary. A miss returns nil, nil.
func (s *Store) GetItinerary(ctx context.Context, key string) (*models.Itinerary, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}

	var itinerary models.Itinerary
	if err := json.Unmarshal(data, &itinerary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached itinerary: %w", err)
	}

	return &itinerary, nil
}

// SetItinerary caches an itinerary for the store TTL
func (s *Store) SetItinerary(ctx context.Context, key string, itinerary *models.Itinerary) error {
	data, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// AcquireLock attempts to acquire the compute lock of an itinerary key.
// Returns true if lock was acquired, false if already locked
func (s *Store) AcquireLock(ctx context.Context, key string) (bool, error) {
	// Try to set the lock key with NX (only if not exists)
	ok, err := s.client.SetNX(ctx, LockKey(key), "1", s.mutexTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseLock releases the compute lock of an itinerary key
func (s *Store) ReleaseLock(ctx context.Context, key string) error {
	return s.client.Del(ctx, LockKey(key)).Err()
}

// WaitForItinerary waits for another instance to release the lock and then
// retrieves the result it cached
func (s *Store) WaitForItinerary(ctx context.Context, key string, maxWait time.Duration) (*models.Itinerary, error) {
	lockKey := LockKey(key)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		// Check if lock is released
		exists, err := s.client.Exists(ctx, lockKey).Result()
		if err != nil {
			return nil, err
		}

		if exists == 0 {
			return s.GetItinerary(ctx, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return nil, fmt.Errorf("timeout waiting for lock")
}

// HealthCheck performs a health check on the Redis connection
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}

	return nil
}

// Stats returns connection pool stats
func (s *Store) Stats() map[string]interface{} {
	poolStats := s.client.PoolStats()

	return map[string]interface{}{
		"hits":        poolStats.Hits,
		"misses":      poolStats.Misses,
		"timeouts":    poolStats.Timeouts,
		"total_conns": poolStats.TotalConns,
		"idle_conns":  poolStats.IdleConns,
		"stale_conns": poolStats.StaleConns,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
