//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analysis computes summary statistics over sales mart rows. It
// does no I/O; callers load rows with the mart package.
package analysis

import (
	"cmp"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/pgEdge/pgedge-bookdw/internal/mart"
)

// Placeholders used when a dimension value is missing.
const (
	UncategorizedLabel = "Uncategorized"
	UnknownAuthorLabel = "Unknown"
)

// Summary holds headline numbers for the dashboard and reports.
type Summary struct {
	Books      int
	Sold       int64
	Revenue    float64
	Authors    int
	Categories int
	MeanRating float64
	RatedBooks int
	FirstYear  int
	FirstMonth int
	LastYear   int
	LastMonth  int
}

// Summarize computes the overall summary. Books is the number of mart
// rows, matching the per-row grain of the dashboard cards.
func Summarize(rows []mart.SalesRow) Summary {
	s := Summary{Books: len(rows)}
	authors := make(map[string]struct{})
	categories := make(map[string]struct{})

	for i, r := range rows {
		s.Sold += r.TotalSold
		s.Revenue += r.TotalRevenue
		authors[r.AuthorName] = struct{}{}
		if r.Category != nil {
			categories[*r.Category] = struct{}{}
		}

		if i == 0 || period(r.Year, r.Month) < period(s.FirstYear, s.FirstMonth) {
			s.FirstYear, s.FirstMonth = r.Year, r.Month
		}
		if i == 0 || period(r.Year, r.Month) > period(s.LastYear, s.LastMonth) {
			s.LastYear, s.LastMonth = r.Year, r.Month
		}
	}

	s.Authors = len(authors)
	s.Categories = len(categories)

	ratings := ValidRatings(rows)
	s.RatedBooks = len(ratings)
	s.MeanRating = Mean(ratings)
	return s
}

func period(year, month int) int {
	return year*12 + month
}

// TopBySold returns the n rows with the highest sold count.
func TopBySold(rows []mart.SalesRow, n int) []mart.SalesRow {
	return topN(rows, n, func(a, b mart.SalesRow) int {
		return cmp.Or(cmp.Compare(b.TotalSold, a.TotalSold), cmp.Compare(a.ProductID, b.ProductID))
	})
}

// TopByRevenue returns the n rows with the highest revenue.
func TopByRevenue(rows []mart.SalesRow, n int) []mart.SalesRow {
	return topN(rows, n, func(a, b mart.SalesRow) int {
		return cmp.Or(cmp.Compare(b.TotalRevenue, a.TotalRevenue), cmp.Compare(a.ProductID, b.ProductID))
	})
}

func topN[T any](items []T, n int, less func(a, b T) int) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, less)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ValidRatings returns the average ratings that are set and positive.
func ValidRatings(rows []mart.SalesRow) []float64 {
	var ratings []float64
	for _, r := range rows {
		if r.AvgRating != nil && *r.AvgRating > 0 {
			ratings = append(ratings, *r.AvgRating)
		}
	}
	return ratings
}

// Mean returns the arithmetic mean, or zero for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// Correlation returns the Pearson correlation of x and y. The second
// result is false when it is undefined: fewer than two pairs, mismatched
// lengths or a constant series.
func Correlation(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	sx, err := stats.StandardDeviationPopulation(x)
	if err != nil || sx == 0 {
		return 0, false
	}
	sy, err := stats.StandardDeviationPopulation(y)
	if err != nil || sy == 0 {
		return 0, false
	}
	r, err := stats.Pearson(x, y)
	if err != nil {
		return 0, false
	}
	return r, true
}

// SoldAndRevenue returns the sold and revenue series of rows.
func SoldAndRevenue(rows []mart.SalesRow) ([]float64, []float64) {
	sold := make([]float64, len(rows))
	revenue := make([]float64, len(rows))
	for i, r := range rows {
		sold[i] = float64(r.TotalSold)
		revenue[i] = r.TotalRevenue
	}
	return sold, revenue
}
