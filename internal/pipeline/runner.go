//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
)

// Recorder persists step outcomes.
type Recorder interface {
	StartStep(ctx context.Context, runID uuid.UUID, step string, startedAt time.Time) error
	FinishStep(ctx context.Context, runID uuid.UUID, step string, rows int64, stepErr error) error
	FinishRun(ctx context.Context, runID uuid.UUID, status string) error
}

// DBRecorder records runs in the bookdw_runs and bookdw_metadata tables.
type DBRecorder struct {
	DB db.DB
}

// StartStep implements Recorder.
func (r DBRecorder) StartStep(ctx context.Context, runID uuid.UUID, step string, startedAt time.Time) error {
	return db.StartStepRun(ctx, r.DB, runID, step, startedAt)
}

// FinishStep implements Recorder.
func (r DBRecorder) FinishStep(ctx context.Context, runID uuid.UUID, step string, rows int64, stepErr error) error {
	return db.FinishStepRun(ctx, r.DB, runID, step, rows, stepErr)
}

// FinishRun implements Recorder.
func (r DBRecorder) FinishRun(ctx context.Context, runID uuid.UUID, status string) error {
	return db.SaveRunMetadata(ctx, r.DB, runID, status)
}

// Outcome is the result of one step within a run.
type Outcome struct {
	Step   string
	Result Result
	Err    error
}

// Runner executes steps in order under a single run id.
type Runner struct {
	Recorder Recorder
}

// NewRunner creates a runner that records into the warehouse.
func NewRunner(database db.DB) *Runner {
	return &Runner{Recorder: DBRecorder{DB: database}}
}

// Run executes the steps in order and stops at the first failure. The
// outcomes of the executed steps are returned even on error.
func (r *Runner) Run(ctx context.Context, env *Env, steps []Step) (uuid.UUID, []Outcome, error) {
	runID := uuid.New()
	outcomes := make([]Outcome, 0, len(steps))

	logging.Info().
		Str("run_id", runID.String()).
		Int("steps", len(steps)).
		Msg("Starting pipeline run")

	status := db.StatusSucceeded
	var runErr error

	for _, step := range steps {
		result, err := r.runStep(ctx, env, runID, step)
		outcomes = append(outcomes, Outcome{Step: step.Name(), Result: result, Err: err})
		if err != nil {
			status = db.StatusFailed
			runErr = fmt.Errorf("step %s failed: %w", step.Name(), err)
			break
		}
	}

	if r.Recorder != nil {
		if err := r.Recorder.FinishRun(ctx, runID, status); err != nil {
			logging.Warn().Err(err).Msg("Could not record run metadata")
		}
	}

	return runID, outcomes, runErr
}

func (r *Runner) runStep(ctx context.Context, env *Env, runID uuid.UUID, step Step) (Result, error) {
	log := logging.Step(step.Name())
	started := env.Now()

	if r.Recorder != nil {
		if err := r.Recorder.StartStep(ctx, runID, step.Name(), started); err != nil {
			log.Warn().Err(err).Msg("Could not record step start")
		}
	}

	log.Info().Str("run_id", runID.String()).Msg("Step started")
	result, err := step.Run(ctx, env)
	result.Duration = env.Now().Sub(started)

	if r.Recorder != nil {
		if recErr := r.Recorder.FinishStep(ctx, runID, step.Name(), result.Rows, err); recErr != nil {
			log.Warn().Err(recErr).Msg("Could not record step outcome")
		}
	}

	if err != nil {
		log.Error().Err(err).Dur("duration", result.Duration).Msg("Step failed")
		return result, err
	}

	log.Info().
		Int64("rows", result.Rows).
		Int("artifacts", len(result.Artifacts)).
		Dur("duration", result.Duration).
		Msg("Step complete")
	return result, nil
}
