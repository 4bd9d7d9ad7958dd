//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package transform derives calendar fields and builds the reporting
// materialized views.
package transform

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

// StepName is the registry name of the transform step.
const StepName = "transform"

func init() {
	pipeline.Register(New())
}

// Phase is a group of statements committed together.
type Phase struct {
	Name       string
	Statements []string
}

// Plan returns the phases for a transform mode. Refresh mode only applies
// when both views already exist; otherwise the views are rebuilt.
func Plan(mode string, viewsExist bool) []Phase {
	phases := []Phase{
		{Name: "derive_dates", Statements: []string{deriveDatesSQL}},
		{Name: "fact_indexes", Statements: createFactIndexesSQL},
	}

	if mode == config.TransformRefresh && viewsExist {
		return append(phases,
			Phase{Name: "refresh_" + SalesMartView, Statements: []string{refreshSalesMartSQL}},
			Phase{Name: "refresh_" + TopMonthlyView, Statements: []string{refreshTopMonthlySQL}},
		)
	}

	return append(phases,
		Phase{Name: "build_" + SalesMartView, Statements: buildSalesMartSQL},
		Phase{Name: "build_" + TopMonthlyView, Statements: buildTopMonthlySQL},
	)
}

// PhaseResult records what one phase changed.
type PhaseResult struct {
	Name string
	Rows int64
}

// Transform executes the plan for mode. Each phase runs in its own
// transaction; the first failure rolls that phase back and stops.
func Transform(ctx context.Context, database db.TxDB, mode string) ([]PhaseResult, error) {
	exists, err := viewsExist(ctx, database)
	if err != nil {
		return nil, err
	}
	if mode == config.TransformRefresh && !exists {
		logging.Info().Msg("Materialized views not found, rebuilding instead of refreshing")
	}

	var results []PhaseResult
	for _, phase := range Plan(mode, exists) {
		var rows int64
		err := db.InTx(ctx, database, func(tx pgx.Tx) error {
			for _, stmt := range phase.Statements {
				tag, err := tx.Exec(ctx, stmt)
				if err != nil {
					return err
				}
				rows += tag.RowsAffected()
			}
			return nil
		})
		if err != nil {
			return results, fmt.Errorf("transform phase %s failed: %w", phase.Name, err)
		}

		logging.Info().
			Str("phase", phase.Name).
			Int64("rows", rows).
			Msg("Transform phase committed")
		results = append(results, PhaseResult{Name: phase.Name, Rows: rows})
	}

	return results, nil
}

func viewsExist(ctx context.Context, database db.DB) (bool, error) {
	for _, view := range []string{SalesMartView, TopMonthlyView} {
		ok, err := db.RelationExists(ctx, database, view)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Step derives dim_date fields and (re)builds the reporting views.
type Step struct{}

// New returns the transform step.
func New() *Step {
	return &Step{}
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return StepName }

// Description implements pipeline.Step.
func (s *Step) Description() string {
	return "Derive calendar fields and build the sales mart and monthly top 10 views"
}

// Run implements pipeline.Step.
func (s *Step) Run(ctx context.Context, env *pipeline.Env) (pipeline.Result, error) {
	if err := env.Config.ValidateTransform(); err != nil {
		return pipeline.Result{}, err
	}

	if _, err := Transform(ctx, env.DB, env.Config.Transform.Mode); err != nil {
		return pipeline.Result{}, err
	}

	rows, err := db.CountRows(ctx, env.DB, SalesMartView)
	if err != nil {
		return pipeline.Result{}, err
	}
	top, err := db.CountRows(ctx, env.DB, TopMonthlyView)
	if err != nil {
		return pipeline.Result{}, err
	}

	logging.Info().
		Int64(SalesMartView, rows).
		Int64(TopMonthlyView, top).
		Msg("Transform complete")

	return pipeline.Result{Rows: rows}, nil
}
