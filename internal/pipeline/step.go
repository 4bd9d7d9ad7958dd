// Package pipeline defines the warehouse step interface, the step registry
// and the runner that sequences steps and records their outcome.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
)

// Env is what a step needs to run.
type Env struct {
	// DB is the warehouse connection pool.
	DB db.TxDB

	// Config is the effective configuration.
	Config *config.Config

	// Now returns the current time; used for file timestamps.
	Now func() time.Time

	// Out receives human-readable console output.
	Out io.Writer
}

// NewEnv returns an Env with the wall clock and stdout.
func NewEnv(database db.TxDB, cfg *config.Config) *Env {
	return &Env{
		DB:     database,
		Config: cfg,
		Now:    time.Now,
		Out:    os.Stdout,
	}
}

// Result describes what a step produced.
type Result struct {
	// Rows is the number of rows written or read, depending on the step.
	Rows int64

	// Artifacts lists files written by the step.
	Artifacts []string

	// Duration is how long the step took.
	Duration time.Duration
}

// Step is a single stage of the warehouse pipeline.
type Step interface {
	// Name returns the step name used on the command line.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Run executes the step.
	Run(ctx context.Context, env *Env) (Result, error)
}
