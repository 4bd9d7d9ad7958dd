//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package visualize renders PNG charts of the sales mart and a static HTML
// dashboard linking them.
package visualize

import (
	"context"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/pgEdge/pgedge-bookdw/internal/analysis"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/mart"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

// StepName is the registry name of the visualize step.
const StepName = "visualize"

func init() {
	pipeline.Register(New())
}

// Step renders charts and the dashboard.
type Step struct{}

// New returns the visualize step.
func New() *Step {
	return &Step{}
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return StepName }

// Description implements pipeline.Step.
func (s *Step) Description() string {
	return "Render sales charts and the HTML dashboard"
}

// Run implements pipeline.Step.
func (s *Step) Run(ctx context.Context, env *pipeline.Env) (pipeline.Result, error) {
	cfg := env.Config.Visualize
	if err := env.Config.ValidateVisualize(); err != nil {
		return pipeline.Result{}, err
	}

	rows, err := mart.SalesRows(ctx, env.DB)
	if err != nil {
		return pipeline.Result{}, err
	}
	summary := analysis.Summarize(rows)
	logging.Info().
		Int("rows", summary.Books).
		Int64("sold", summary.Sold).
		Int("authors", summary.Authors).
		Msg("Loaded sales mart")

	renderer := &Renderer{
		Dir:    cfg.Dir,
		Width:  vg.Length(cfg.Width) * vg.Inch,
		Height: vg.Length(cfg.Height) * vg.Inch,
	}
	paths, err := renderer.Render(rows, Charts())
	if err != nil {
		return pipeline.Result{}, err
	}

	dashboard, err := NewDashboard(cfg.Title, cfg.Dir, summary, env.Now())
	if err != nil {
		return pipeline.Result{}, err
	}
	dashboardPath := filepath.Join(cfg.Dir, cfg.Dashboard)
	if err := WriteDashboard(dashboardPath, dashboard); err != nil {
		return pipeline.Result{}, err
	}

	logging.Info().
		Int("charts", len(paths)).
		Str("dashboard", dashboardPath).
		Msg("Visualization complete")

	return pipeline.Result{
		Rows:      int64(len(rows)),
		Artifacts: append(paths, dashboardPath),
	}, nil
}
