//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package export writes BI extracts of the sales mart: CSV files, an
// optional Excel workbook and usage guides.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pgEdge/pgedge-bookdw/internal/analysis"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/mart"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

// StepName is the registry name of the export step.
const StepName = "export"

// TimestampLayout formats the suffix of every exported file name.
const TimestampLayout = "20060102_150405"

// TemplateGuideFile is the name of the static BI template guide.
const TemplateGuideFile = "powerbi_template_guide.txt"

func init() {
	pipeline.Register(New())
}

// Datasets are the tables written by an export.
type Datasets struct {
	Sales      []analysis.ExportRow
	Authors    []analysis.AuthorStats
	Categories []analysis.CategoryStats
	TimeSeries []analysis.MonthlyStats
	TopBooks   []analysis.TopBookRow
	TopMonthly []mart.TopMonthlyRow
}

// BuildDatasets derives every dataset from the mart rows.
func BuildDatasets(sales []mart.SalesRow, topMonthly []mart.TopMonthlyRow, topBooks int) Datasets {
	return Datasets{
		Sales:      analysis.Clean(sales),
		Authors:    analysis.Authors(sales),
		Categories: analysis.Categories(sales),
		TimeSeries: analysis.TimeSeries(sales),
		TopBooks:   analysis.TopBooks(sales, topBooks),
		TopMonthly: topMonthly,
	}
}

// File is a written export file.
type File struct {
	// Name is the file name inside the export directory.
	Name string

	// Path is the full path of the file.
	Path string

	// Rows is the number of data rows, zero for guides.
	Rows int
}

// Exporter writes datasets into a directory.
type Exporter struct {
	Dir       string
	Timestamp string
	Workbook  bool
	Guide     bool
}

// name returns a timestamped file name.
func (e *Exporter) name(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, e.Timestamp, ext)
}

// Write writes every dataset and returns the files in write order.
func (e *Exporter) Write(ds Datasets) ([]File, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var files []File
	add := func(name string, rows int, err error) error {
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		files = append(files, File{Name: name, Path: filepath.Join(e.Dir, name), Rows: rows})
		return nil
	}

	writes := []struct {
		prefix string
		write  func(path string) (int, error)
	}{
		{"book_sales_data", func(p string) (int, error) { return writeCSV(p, ds.Sales) }},
		{"book_authors", func(p string) (int, error) { return writeCSV(p, ds.Authors) }},
		{"book_categories", func(p string) (int, error) { return writeCSV(p, ds.Categories) }},
		{"book_timeseries", func(p string) (int, error) { return writeCSV(p, ds.TimeSeries) }},
		{"book_top_books", func(p string) (int, error) { return writeCSV(p, ds.TopBooks) }},
		{"book_top_monthly", func(p string) (int, error) { return writeCSV(p, ds.TopMonthly) }},
	}
	for _, w := range writes {
		name := e.name(w.prefix, "csv")
		n, err := w.write(filepath.Join(e.Dir, name))
		if err := add(name, n, err); err != nil {
			return files, err
		}
	}

	if e.Workbook {
		name := e.name("book_sales", "xlsx")
		n, err := writeWorkbook(filepath.Join(e.Dir, name), ds)
		if err := add(name, n, err); err != nil {
			return files, err
		}
	}

	if e.Guide {
		name := e.name("powerbi_guide", "txt")
		err := writeGuide(filepath.Join(e.Dir, name), guideData(e.Timestamp, files, len(ds.Sales)))
		if err := add(name, 0, err); err != nil {
			return files, err
		}
		err = writeTemplateGuide(filepath.Join(e.Dir, TemplateGuideFile))
		if err := add(TemplateGuideFile, 0, err); err != nil {
			return files, err
		}
	}

	return files, nil
}

// TotalRows sums the data rows of the CSV extracts.
func TotalRows(files []File) int {
	total := 0
	for _, f := range files {
		if filepath.Ext(f.Name) == ".csv" {
			total += f.Rows
		}
	}
	return total
}

// Step exports the sales mart for BI tools.
type Step struct{}

// New returns the export step.
func New() *Step {
	return &Step{}
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return StepName }

// Description implements pipeline.Step.
func (s *Step) Description() string {
	return "Write CSV extracts, an Excel workbook and BI guides from the sales mart"
}

// Run implements pipeline.Step.
func (s *Step) Run(ctx context.Context, env *pipeline.Env) (pipeline.Result, error) {
	cfg := env.Config
	if err := cfg.ValidateExport(); err != nil {
		return pipeline.Result{}, err
	}

	sales, err := mart.SalesRows(ctx, env.DB)
	if err != nil {
		return pipeline.Result{}, err
	}
	top, err := mart.TopMonthly(ctx, env.DB)
	if err != nil {
		return pipeline.Result{}, err
	}
	logging.Info().Int("rows", len(sales)).Msg("Loaded sales mart")

	exporter := &Exporter{
		Dir:       cfg.Export.Dir,
		Timestamp: env.Now().Format(TimestampLayout),
		Workbook:  cfg.Export.Workbook,
		Guide:     cfg.Export.Guide,
	}
	files, err := exporter.Write(BuildDatasets(sales, top, cfg.Export.TopBooks))
	if err != nil {
		return pipeline.Result{}, err
	}

	result := pipeline.Result{Rows: int64(TotalRows(files))}
	for _, f := range files {
		logging.Info().Str("file", f.Path).Int("rows", f.Rows).Msg("Exported")
		result.Artifacts = append(result.Artifacts, f.Path)
	}
	logging.Info().
		Str("dir", cfg.Export.Dir).
		Str("timestamp", exporter.Timestamp).
		Int64("rows", result.Rows).
		Msg("Export complete")

	return result, nil
}
