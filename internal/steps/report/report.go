//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report prints sales insights and relation details to the
// console.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/pgEdge/pgedge-bookdw/internal/analysis"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/mart"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

// StepName is the registry name of the report step.
const StepName = "report"

// TopAuthors is the number of authors listed in the report.
const TopAuthors = 5

// recentRuns is the number of step executions listed in the report.
const recentRuns = 10

func init() {
	pipeline.Register(New())
}

// Report holds everything printed by the report step.
type Report struct {
	Summary    analysis.Summary
	TopAuthors []analysis.AuthorStats
	Discounts  []mart.CategoryDiscount

	// DiscountSoldR is the Pearson correlation between discount percent
	// and sold count; HasCorrelation is false when it is undefined.
	DiscountSoldR  float64
	HasCorrelation bool
	Pairs          int

	LatestTop  []mart.TopMonthlyRow
	RecentRuns []db.StepRun
}

// Build gathers the report from the warehouse.
func Build(ctx context.Context, database db.DB) (Report, error) {
	var r Report

	rows, err := mart.SalesRows(ctx, database)
	if err != nil {
		return r, err
	}
	r.Summary = analysis.Summarize(rows)
	r.TopAuthors = analysis.TopAuthors(rows, TopAuthors)

	if r.Discounts, err = mart.CategoryDiscounts(ctx, database); err != nil {
		return r, err
	}

	pairs, err := mart.DiscountSoldPairs(ctx, database)
	if err != nil {
		return r, err
	}
	discount := make([]float64, len(pairs))
	sold := make([]float64, len(pairs))
	for i, p := range pairs {
		discount[i] = p.DiscountPercent
		sold[i] = p.Sold
	}
	r.Pairs = len(pairs)
	r.DiscountSoldR, r.HasCorrelation = analysis.Correlation(discount, sold)

	if r.LatestTop, err = mart.LatestTopMonthly(ctx, database); err != nil {
		return r, err
	}

	if r.RecentRuns, err = db.RecentStepRuns(ctx, database, recentRuns); err != nil {
		logging.Warn().Err(err).Msg("Could not read run history")
	}
	return r, nil
}

// Write prints the report as a series of tables.
func Write(w io.Writer, r Report) {
	s := r.Summary

	fmt.Fprintln(w, "=== BOOK SALES INSIGHTS ===")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary")
	table := newTable(w, []string{"Metric", "Value"})
	table.Append([]string{"Mart rows", humanize.Comma(int64(s.Books))})
	table.Append([]string{"Books sold", humanize.Comma(s.Sold)})
	table.Append([]string{"Revenue (VND)", humanize.Commaf(roundTo(s.Revenue, 0))})
	table.Append([]string{"Authors", strconv.Itoa(s.Authors)})
	table.Append([]string{"Categories", strconv.Itoa(s.Categories)})
	table.Append([]string{"Mean rating", fmt.Sprintf("%.2f (%d rated)", s.MeanRating, s.RatedBooks)})
	if s.Books > 0 {
		table.Append([]string{"Period", fmt.Sprintf("%04d-%02d to %04d-%02d", s.FirstYear, s.FirstMonth, s.LastYear, s.LastMonth)})
	}
	table.Render()

	fmt.Fprintf(w, "\nTop %d authors by books sold\n", TopAuthors)
	table = newTable(w, []string{"#", "Author", "Sold", "Revenue (VND)", "Books"})
	for i, a := range r.TopAuthors {
		table.Append([]string{
			strconv.Itoa(i + 1),
			a.Author,
			humanize.Comma(a.Sold),
			humanize.Commaf(roundTo(a.Revenue, 0)),
			strconv.Itoa(a.Books),
		})
	}
	table.Render()

	fmt.Fprintln(w, "\nMean discount price by category")
	table = newTable(w, []string{"Category", "Facts", "Mean price (VND)"})
	for _, d := range r.Discounts {
		table.Append([]string{d.Category, humanize.Comma(d.Facts), humanize.Commaf(roundTo(d.AvgDiscountPrice, 2))})
	}
	table.Render()

	fmt.Fprintln(w, "\nDiscount percent vs books sold")
	if r.HasCorrelation {
		fmt.Fprintf(w, "Pearson r = %.4f over %s facts (%s)\n",
			r.DiscountSoldR, humanize.Comma(int64(r.Pairs)), strength(r.DiscountSoldR))
	} else {
		fmt.Fprintf(w, "Correlation undefined over %d facts\n", r.Pairs)
	}

	if len(r.LatestTop) > 0 {
		first := r.LatestTop[0]
		fmt.Fprintf(w, "\nTop books of %04d-%02d\n", first.Year, first.Month)
		table = newTable(w, []string{"Rank", "Title", "Sold"})
		for _, t := range r.LatestTop {
			table.Append([]string{strconv.Itoa(t.Rank), t.Title, humanize.Comma(t.TotalSold)})
		}
		table.Render()
	}

	if len(r.RecentRuns) > 0 {
		fmt.Fprintln(w, "\nRecent pipeline steps")
		table = newTable(w, []string{"Run", "Step", "Status", "Rows", "Started"})
		for _, run := range r.RecentRuns {
			table.Append([]string{
				run.RunID.String()[:8],
				run.Step,
				run.Status,
				humanize.Comma(run.RowsAffected),
				run.StartedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

func roundTo(v float64, places int) float64 {
	p, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return p
}

// strength describes the magnitude of a correlation coefficient.
func strength(r float64) string {
	if r < 0 {
		r = -r
	}
	switch {
	case r >= 0.7:
		return "strong"
	case r >= 0.4:
		return "moderate"
	case r >= 0.1:
		return "weak"
	default:
		return "negligible"
	}
}

// Step prints the sales insights report.
type Step struct{}

// New returns the report step.
func New() *Step {
	return &Step{}
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return StepName }

// Description implements pipeline.Step.
func (s *Step) Description() string {
	return "Print top authors, category prices and discount correlation"
}

// Run implements pipeline.Step.
func (s *Step) Run(ctx context.Context, env *pipeline.Env) (pipeline.Result, error) {
	if err := env.Config.Validate(); err != nil {
		return pipeline.Result{}, err
	}
	r, err := Build(ctx, env.DB)
	if err != nil {
		return pipeline.Result{}, err
	}
	Write(env.Out, r)
	return pipeline.Result{Rows: int64(r.Summary.Books)}, nil
}
