package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Port of the Supabase transaction pooler, which rejects prepared statements
const transactionPoolerPort = 6543

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// Tables that make up a stored dataset, in load order
var datasetTables = []string{"stops", "routes", "route_transports"}

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MinConns        int32
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// SimpleProtocol disables prepared statements
	SimpleProtocol bool
}

// LoadConfigFromEnv loads database configuration from environment variables
func LoadConfigFromEnv() *Config {
	port := getEnvInt("DB_PORT", 5432)

	return &Config{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            port,
		Database:        getEnv("DB_NAME", "transitmap"),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MinConns:        int32(getEnvInt("DB_MIN_CONNS", 1)),
		MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 4)),
		MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		SimpleProtocol:  getEnvBool("DB_SIMPLE_PROTOCOL", port == transactionPoolerPort),
	}
}

// ConnString renders the config as a libpq keyword/value string
func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.User, c.Password, c.SSLMode,
	)
}

// PoolConfig builds the pgxpool configuration. The network is read once at
// startup and written by the importer, so the pool stays small.
func (c *Config) PoolConfig() (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(c.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MinConns = c.MinConns
	poolConfig.MaxConns = c.MaxConns
	poolConfig.MaxConnLifetime = c.MaxConnLifetime
	poolConfig.MaxConnIdleTime = c.MaxConnIdleTime
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "transitmap"

	if c.SimpleProtocol {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return poolConfig, nil
}

// GetDB returns the global database connection pool (singleton pattern)
func GetDB() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		pool, poolErr = Connect(context.Background(), LoadConfigFromEnv())
	})
	return pool, poolErr
}

// Connect opens and pings a new pool
func Connect(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	poolConfig, err := config.PoolConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("unable to ping database %s on %s:%d: %w", config.Database, config.Host, config.Port, err)
	}
	return p, nil
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck checks the global pool and returns the row count of every
// dataset table. An empty stops table is reported as an error: the server
// would have no network to route on.
func HealthCheck(ctx context.Context) (map[string]int, error) {
	p, err := GetDB()
	if err != nil {
		return nil, fmt.Errorf("database connection not initialized: %w", err)
	}
	return CountDataset(ctx, p)
}

// CountDataset returns the row count of every dataset table
func CountDataset(ctx context.Context, p *pgxpool.Pool) (map[string]int, error) {
	counts := make(map[string]int, len(datasetTables))
	for _, table := range datasetTables {
		var n int
		if err := p.QueryRow(ctx, countQuery(table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("table %s not available: %w", table, err)
		}
		counts[table] = n
	}
	if counts["stops"] == 0 {
		return counts, fmt.Errorf("no dataset imported")
	}
	return counts, nil
}

func countQuery(table string) string {
	return "SELECT count(*) FROM " + pgx.Identifier{table}.Sanitize()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}
