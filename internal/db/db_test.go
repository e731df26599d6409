package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "network")
	t.Setenv("DB_MAX_CONNS", "8")

	config := LoadConfigFromEnv()
	assert.Equal(t, "db.internal", config.Host)
	assert.Equal(t, 6543, config.Port)
	assert.Equal(t, "network", config.Database)
	assert.Equal(t, "postgres", config.User)
	assert.Equal(t, int32(1), config.MinConns)
	assert.Equal(t, int32(8), config.MaxConns)
	assert.True(t, config.SimpleProtocol, "transaction pooler port")

	assert.Equal(t,
		"host=db.internal port=6543 dbname=network user=postgres password= sslmode=disable",
		config.ConnString())
}

func TestPoolConfig(t *testing.T) {
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_MAX_CONN_LIFETIME", "15m")

	config := LoadConfigFromEnv()
	require.False(t, config.SimpleProtocol)

	poolConfig, err := config.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(4), poolConfig.MaxConns)
	assert.Equal(t, 15*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, "transitmap", poolConfig.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, pgx.QueryExecModeCacheStatement, poolConfig.ConnConfig.DefaultQueryExecMode)

	config.SimpleProtocol = true
	poolConfig, err = config.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, poolConfig.ConnConfig.DefaultQueryExecMode)
}

func TestCountQuery(t *testing.T) {
	assert.Equal(t, `SELECT count(*) FROM "route_transports"`, countQuery("route_transports"))
}

func TestApplyTransport(t *testing.T) {
	route := models.NewRoute("A", "B")
	byPair := map[[2]string]*models.Route{{"A", "B"}: route}

	err := applyTransport(byPair, "A", "B", "bicycle", models.Float(3), models.Int(12), nil)
	require.NoError(t, err)
	assert.Equal(t, []models.Transport{models.TransportBicycle}, route.Transports())
	assert.Equal(t, 12, *route.Durations[models.TransportBicycle])
	assert.Nil(t, route.Costs[models.TransportBicycle])

	assert.Error(t, applyTransport(byPair, "B", "A", "bus", nil, nil, nil))
	assert.Error(t, applyTransport(byPair, "A", "B", "tram", nil, nil, nil))
}

func TestLayoutArgs(t *testing.T) {
	layout := graph.Layout{"A": {10, 20}}

	x, y := layoutArgs(layout, "A")
	require.NotNil(t, x)
	require.NotNil(t, y)
	assert.Equal(t, 10, *x)
	assert.Equal(t, 20, *y)

	x, y = layoutArgs(layout, "B")
	assert.Nil(t, x)
	assert.Nil(t, y)
}

func TestImportSummary(t *testing.T) {
	assert.Equal(t, "Imported 4 stops, 3 routes (2 rows dropped while cleaning)", ImportSummary(4, 3, 2))
}
