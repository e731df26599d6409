package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Import statuses recorded in import_log
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportFailed  = "failed"
)

// CreateImportLog records the start of an import and returns its id
func CreateImportLog(ctx context.Context, pool *pgxpool.Pool, source string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO import_log (source, status)
		VALUES ($1, $2)
		RETURNING id
	`, source, ImportRunning).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	return id, nil
}

// FinishImportLog marks an import as finished with the given status
func FinishImportLog(ctx context.Context, pool *pgxpool.Pool, id int64, status, message string) error {
	_, err := pool.Exec(ctx, `
		UPDATE import_log
		SET completed_at = NOW(),
		    status = $2,
		    message = $3
		WHERE id = $1
	`, id, status, message)
	return err
}

// ImportSummary formats the message stored for a successful import
func ImportSummary(stops, routes, skipped int) string {
	return fmt.Sprintf("Imported %d stops, %d routes (%d rows dropped while cleaning)", stops, routes, skipped)
}
