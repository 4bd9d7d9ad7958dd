//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/pkg/version"
)

// Metadata keys written after each pipeline run.
const (
	MetaLastRunID      = "last_run_id"
	MetaLastRunStatus  = "last_run_status"
	MetaLastRunAt      = "last_run_at"
	MetaVersion        = "version"
	MetaLastLoadedRows = "last_loaded_rows"
)

// Step run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// StepRun is one row of bookdw_runs.
type StepRun struct {
	RunID        uuid.UUID  `db:"run_id"`
	Step         string     `db:"step"`
	Status       string     `db:"status"`
	RowsAffected int64      `db:"rows_affected"`
	StartedAt    time.Time  `db:"started_at"`
	FinishedAt   *time.Time `db:"finished_at"`
	Error        *string    `db:"error"`
}

// SaveMetadata upserts metadata key/value pairs.
func SaveMetadata(ctx context.Context, db DB, values map[string]string) error {
	for key, value := range values {
		_, err := db.Exec(ctx, `
            INSERT INTO bookdw_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}
	return nil
}

// SaveRunMetadata records the outcome of a pipeline run.
func SaveRunMetadata(ctx context.Context, db DB, runID uuid.UUID, status string) error {
	err := SaveMetadata(ctx, db, map[string]string{
		MetaLastRunID:     runID.String(),
		MetaLastRunStatus: status,
		MetaLastRunAt:     time.Now().UTC().Format(time.RFC3339),
		MetaVersion:       version.Short(),
	})
	if err != nil {
		return err
	}

	logging.Debug().
		Str("run_id", runID.String()).
		Str("status", status).
		Msg("Saved run metadata")
	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, db DB, key string) (string, error) {
	var value string
	err := db.QueryRow(ctx, `
        SELECT value FROM bookdw_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, db DB) (map[string]string, error) {
	rows, err := db.Query(ctx, `SELECT key, value FROM bookdw_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// StartStepRun records that a step has started.
func StartStepRun(ctx context.Context, db DB, runID uuid.UUID, step string, startedAt time.Time) error {
	_, err := db.Exec(ctx, `
        INSERT INTO bookdw_runs (run_id, step, status, started_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (run_id, step) DO UPDATE
        SET status = EXCLUDED.status, started_at = EXCLUDED.started_at,
            finished_at = NULL, error = NULL, rows_affected = 0
    `, runID, step, StatusRunning, startedAt)
	if err != nil {
		return fmt.Errorf("failed to record start of %s: %w", step, err)
	}
	return nil
}

// FinishStepRun records the outcome of a step. A nil stepErr marks success.
func FinishStepRun(ctx context.Context, db DB, runID uuid.UUID, step string, rows int64, stepErr error) error {
	status := StatusSucceeded
	var errText *string
	if stepErr != nil {
		status = StatusFailed
		msg := stepErr.Error()
		errText = &msg
	}

	_, err := db.Exec(ctx, `
        UPDATE bookdw_runs
        SET status = $3, rows_affected = $4, finished_at = now(), error = $5
        WHERE run_id = $1 AND step = $2
    `, runID, step, status, rows, errText)
	if err != nil {
		return fmt.Errorf("failed to record end of %s: %w", step, err)
	}
	return nil
}

// RecentStepRuns returns the most recent step executions, newest first.
func RecentStepRuns(ctx context.Context, db DB, limit int) ([]StepRun, error) {
	rows, err := db.Query(ctx, `
        SELECT run_id, step, status, rows_affected, started_at, finished_at, error
        FROM bookdw_runs
        ORDER BY started_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []StepRun
	for rows.Next() {
		var r StepRun
		if err := rows.Scan(&r.RunID, &r.Step, &r.Status, &r.RowsAffected,
			&r.StartedAt, &r.FinishedAt, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
