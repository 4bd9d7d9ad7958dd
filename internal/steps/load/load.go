//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package load

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

// StepName is the registry name of the load step.
const StepName = "load"

func init() {
	pipeline.Register(New())
}

// Phase is one statement of the load sequence.
type Phase struct {
	// Name identifies the phase in logs and stats.
	Name string

	// Target is the table written by the phase, if any.
	Target string

	SQL string
}

// Phases returns the load statements in execution order. Dimensions are
// populated before the fact table so the fact joins can resolve every key.
func Phases() []Phase {
	return []Phase{
		{Name: "ensure_date_columns", SQL: ensureDateColumnsSQL},
		{Name: "authors", Target: "dim_author", SQL: insertAuthorsSQL},
		{Name: "publishers", Target: "dim_publisher", SQL: insertPublishersSQL},
		{Name: "suppliers", Target: "dim_supplier", SQL: insertSuppliersSQL},
		{Name: "categories", Target: "dim_category", SQL: insertCategoriesSQL},
		{Name: "products", Target: "dim_product", SQL: insertProductsSQL},
		{Name: "dates", Target: "dim_date", SQL: insertDatesSQL},
		{Name: "facts", Target: "fact_book_sales", SQL: insertFactsSQL},
	}
}

// Stats reports rows inserted per target table.
type Stats struct {
	Staged   int64
	Inserted map[string]int64
}

// Facts returns the number of fact rows inserted.
func (s Stats) Facts() int64 {
	return s.Inserted["fact_book_sales"]
}

// Total returns the number of rows inserted across all tables.
func (s Stats) Total() int64 {
	var total int64
	for _, n := range s.Inserted {
		total += n
	}
	return total
}

// Load runs every phase against db. The caller owns the transaction.
func Load(ctx context.Context, database db.DB) (Stats, error) {
	stats := Stats{Inserted: make(map[string]int64)}

	staged, err := db.CountRows(ctx, database, "staging_books")
	if err != nil {
		return stats, err
	}
	stats.Staged = staged
	if staged == 0 {
		logging.Warn().Msg("staging_books is empty, nothing to load")
	}

	for _, phase := range Phases() {
		tag, err := database.Exec(ctx, phase.SQL)
		if err != nil {
			return stats, fmt.Errorf("load phase %s failed: %w", phase.Name, err)
		}
		if phase.Target == "" {
			continue
		}
		stats.Inserted[phase.Target] = tag.RowsAffected()
		logging.Debug().
			Str("phase", phase.Name).
			Str("table", phase.Target).
			Int64("rows", tag.RowsAffected()).
			Msg("Load phase complete")
	}

	return stats, nil
}

// Step loads staging rows into the dimension and fact tables.
type Step struct{}

// New returns the load step.
func New() *Step {
	return &Step{}
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return StepName }

// Description implements pipeline.Step.
func (s *Step) Description() string {
	return "Upsert dimensions and insert facts from staging_books"
}

// Run implements pipeline.Step. All phases commit together or not at all.
func (s *Step) Run(ctx context.Context, env *pipeline.Env) (pipeline.Result, error) {
	if err := env.Config.Validate(); err != nil {
		return pipeline.Result{}, err
	}

	var stats Stats
	err := db.InTx(ctx, env.DB, func(tx pgx.Tx) error {
		var err error
		stats, err = Load(ctx, tx)
		return err
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	if err := db.SaveMetadata(ctx, env.DB, map[string]string{
		db.MetaLastLoadedRows: strconv.FormatInt(stats.Facts(), 10),
	}); err != nil {
		logging.Warn().Err(err).Msg("Could not record loaded row count")
	}

	log := logging.Info().Int64("staged", stats.Staged)
	for _, phase := range Phases() {
		if phase.Target != "" {
			log = log.Int64(phase.Target, stats.Inserted[phase.Target])
		}
	}
	log.Msg("Load complete")

	return pipeline.Result{Rows: stats.Facts()}, nil
}
