package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/transitmap/internal/dataset"
	"github.com/passbi/transitmap/internal/graph"
	"github.com/passbi/transitmap/internal/models"
)

// schema is applied in order by EnsureSchema. Statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS stops (
		position  SERIAL,
		code      TEXT PRIMARY KEY,
		name      TEXT NOT NULL UNIQUE,
		latitude  DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		layout_x  INTEGER,
		layout_y  INTEGER
	)`,

	`CREATE TABLE IF NOT EXISTS routes (
		position   SERIAL,
		start_code TEXT NOT NULL REFERENCES stops(code) ON DELETE CASCADE,
		end_code   TEXT NOT NULL REFERENCES stops(code) ON DELETE CASCADE,
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (start_code, end_code)
	)`,

	// One row per offered transport; a missing row means not offered
	`CREATE TABLE IF NOT EXISTS route_transports (
		start_code TEXT NOT NULL,
		end_code   TEXT NOT NULL,
		transport  TEXT NOT NULL,
		distance   DOUBLE PRECISION,
		duration   INTEGER,
		cost       DOUBLE PRECISION,
		PRIMARY KEY (start_code, end_code, transport),
		FOREIGN KEY (start_code, end_code) REFERENCES routes(start_code, end_code) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS import_log (
		id           BIGSERIAL PRIMARY KEY,
		source       TEXT NOT NULL,
		status       TEXT NOT NULL,
		message      TEXT,
		started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the dataset tables if they do not exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i, err)
		}
	}
	return nil
}

// SaveDataset replaces the stored dataset with ds in a single transaction
func SaveDataset(ctx context.Context, pool *pgxpool.Pool, ds *dataset.Dataset) error {
	startTime := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE route_transports, routes, stops RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("failed to clear dataset: %w", err)
	}

	batch := &pgx.Batch{}
	for _, stop := range ds.Stops {
		x, y := layoutArgs(ds.Layout, stop.Code)
		batch.Queue(`
			INSERT INTO stops (code, name, latitude, longitude, layout_x, layout_y)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, stop.Code, stop.Name, stop.Latitude, stop.Longitude, x, y)
	}

	for _, route := range ds.Routes {
		batch.Queue(`
			INSERT INTO routes (start_code, end_code, active)
			VALUES ($1, $2, $3)
		`, route.StartStopCode, route.EndStopCode, route.Active)

		for _, t := range route.Transports() {
			batch.Queue(`
				INSERT INTO route_transports (start_code, end_code, transport, distance, duration, cost)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, route.StartStopCode, route.EndStopCode, t.Key(),
				route.Distances[t], route.Durations[t], route.Costs[t])
		}
	}

	if err := executeBatch(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}

	log.Printf("Dataset saved in %v (%d stops, %d routes, %d statements)",
		time.Since(startTime), len(ds.Stops), len(ds.Routes), batch.Len())
	return nil
}

// LoadDataset reads the stored dataset back in insertion order
func LoadDataset(ctx context.Context, pool *pgxpool.Pool) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{Layout: make(graph.Layout)}

	rows, err := pool.Query(ctx, `
		SELECT code, name, latitude, longitude, layout_x, layout_y
		FROM stops
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	for rows.Next() {
		var code, name string
		var lat, lon float64
		var x, y *int
		if err := rows.Scan(&code, &name, &lat, &lon, &x, &y); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		ds.Stops = append(ds.Stops, models.NewStop(code, name, lat, lon))
		if x != nil && y != nil {
			ds.Layout[code] = [2]int{*x, *y}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byPair := make(map[[2]string]*models.Route)
	rows, err = pool.Query(ctx, `
		SELECT start_code, end_code, active
		FROM routes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	for rows.Next() {
		var start, end string
		var active bool
		if err := rows.Scan(&start, &end, &active); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		route := models.NewRoute(start, end)
		route.Active = active
		ds.Routes = append(ds.Routes, route)
		byPair[[2]string{start, end}] = route
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pool.Query(ctx, `
		SELECT start_code, end_code, transport, distance, duration, cost
		FROM route_transports
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query route transports: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var start, end, key string
		var distance, cost *float64
		var duration *int
		if err := rows.Scan(&start, &end, &key, &distance, &duration, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan route transport: %w", err)
		}
		if err := applyTransport(byPair, start, end, key, distance, duration, cost); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("Dataset loaded from database (%d stops, %d routes)", len(ds.Stops), len(ds.Routes))
	return ds, nil
}

func applyTransport(byPair map[[2]string]*models.Route, start, end, key string, distance *float64, duration *int, cost *float64) error {
	route, ok := byPair[[2]string{start, end}]
	if !ok {
		return fmt.Errorf("transport row for unknown route %s - %s", start, end)
	}
	t, err := models.ParseTransport(key)
	if err != nil {
		return fmt.Errorf("route %s: %w", route, err)
	}
	route.SetTransport(t, distance, duration, cost)
	return nil
}

func layoutArgs(layout graph.Layout, code string) (*int, *int) {
	xy, ok := layout[code]
	if !ok {
		return nil, nil
	}
	return models.Int(xy[0]), models.Int(xy[1])
}

// executeBatch sends a batch and checks every statement result
func executeBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch execution failed at query %d: %w", i, err)
		}
	}

	return nil
}
