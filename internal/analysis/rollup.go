//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analysis

import (
	"cmp"
	"slices"

	"github.com/pgEdge/pgedge-bookdw/internal/mart"
)

// AuthorStats aggregates mart rows of one author.
type AuthorStats struct {
	Author     string  `csv:"author_name"`
	Books      int     `csv:"book_count"`
	Sold       int64   `csv:"total_books_sold"`
	Revenue    float64 `csv:"total_revenue_author"`
	MeanRating float64 `csv:"avg_author_rating"`
}

// CategoryStats aggregates mart rows of one category.
type CategoryStats struct {
	Category       string  `csv:"category"`
	Books          int     `csv:"book_count"`
	Sold           int64   `csv:"total_sold"`
	Revenue        float64 `csv:"total_revenue"`
	MeanRating     float64 `csv:"avg_rating"`
	MeanSoldPerRow float64 `csv:"avg_sold_per_book"`
}

// MonthlyStats aggregates mart rows of one (year, month).
type MonthlyStats struct {
	Year       int     `csv:"collect_year"`
	Month      int     `csv:"collect_month"`
	Sold       int64   `csv:"monthly_sold"`
	Revenue    float64 `csv:"monthly_revenue"`
	Books      int     `csv:"book_count"`
	MeanRating float64 `csv:"monthly_avg_rating"`
}

// PeriodTotal is the sold and revenue total of a year or a month of year.
type PeriodTotal struct {
	Period  int
	Sold    int64
	Revenue float64
	Books   int
}

// CategoryCount is the number of mart rows in a category.
type CategoryCount struct {
	Category string
	Books    int
}

// ratingAcc averages ratings, skipping rows without one.
type ratingAcc struct {
	sum float64
	n   int
}

func (a *ratingAcc) add(r mart.SalesRow) {
	if r.AvgRating != nil {
		a.sum += *r.AvgRating
		a.n++
	}
}

func (a ratingAcc) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

// Authors rolls rows up per author, ordered by sold descending. Rows with
// an empty author name are skipped.
func Authors(rows []mart.SalesRow) []AuthorStats {
	index := make(map[string]int)
	var out []AuthorStats
	var ratings []ratingAcc

	for _, r := range rows {
		if r.AuthorName == "" {
			continue
		}
		i, ok := index[r.AuthorName]
		if !ok {
			i = len(out)
			index[r.AuthorName] = i
			out = append(out, AuthorStats{Author: r.AuthorName})
			ratings = append(ratings, ratingAcc{})
		}
		out[i].Books++
		out[i].Sold += r.TotalSold
		out[i].Revenue += r.TotalRevenue
		ratings[i].add(r)
	}

	for i := range out {
		out[i].MeanRating = ratings[i].mean()
	}
	slices.SortStableFunc(out, func(a, b AuthorStats) int {
		return cmp.Or(cmp.Compare(b.Sold, a.Sold), cmp.Compare(a.Author, b.Author))
	})
	return out
}

// TopAuthors returns the n authors with the highest sold count.
func TopAuthors(rows []mart.SalesRow, n int) []AuthorStats {
	authors := Authors(rows)
	if len(authors) > n {
		authors = authors[:n]
	}
	return authors
}

// Categories rolls rows up per category_2, ordered by sold descending.
// Rows without a category are skipped.
func Categories(rows []mart.SalesRow) []CategoryStats {
	index := make(map[string]int)
	var out []CategoryStats
	var ratings []ratingAcc

	for _, r := range rows {
		if r.Category == nil {
			continue
		}
		i, ok := index[*r.Category]
		if !ok {
			i = len(out)
			index[*r.Category] = i
			out = append(out, CategoryStats{Category: *r.Category})
			ratings = append(ratings, ratingAcc{})
		}
		out[i].Books++
		out[i].Sold += r.TotalSold
		out[i].Revenue += r.TotalRevenue
		ratings[i].add(r)
	}

	for i := range out {
		out[i].MeanRating = ratings[i].mean()
		out[i].MeanSoldPerRow = float64(out[i].Sold) / float64(out[i].Books)
	}
	slices.SortStableFunc(out, func(a, b CategoryStats) int {
		return cmp.Or(cmp.Compare(b.Sold, a.Sold), cmp.Compare(a.Category, b.Category))
	})
	return out
}

// CategoryCounts returns the n categories with the most rows. Rows without
// a category are not counted.
func CategoryCounts(rows []mart.SalesRow, n int) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.Category != nil {
			counts[*r.Category]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CategoryCount{Category: c, Books: k})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		return cmp.Or(cmp.Compare(b.Books, a.Books), cmp.Compare(a.Category, b.Category))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TimeSeries rolls rows up per (year, month) in chronological order.
func TimeSeries(rows []mart.SalesRow) []MonthlyStats {
	type key struct{ year, month int }
	index := make(map[key]int)
	var out []MonthlyStats
	var ratings []ratingAcc

	for _, r := range rows {
		k := key{r.Year, r.Month}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, MonthlyStats{Year: r.Year, Month: r.Month})
			ratings = append(ratings, ratingAcc{})
		}
		out[i].Sold += r.TotalSold
		out[i].Revenue += r.TotalRevenue
		out[i].Books++
		ratings[i].add(r)
	}

	for i := range out {
		out[i].MeanRating = ratings[i].mean()
	}
	slices.SortFunc(out, func(a, b MonthlyStats) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month))
	})
	return out
}

// Yearly totals rows per year.
func Yearly(rows []mart.SalesRow) []PeriodTotal {
	return periodTotals(rows, func(r mart.SalesRow) int { return r.Year })
}

// MonthOfYear totals rows per calendar month across years.
func MonthOfYear(rows []mart.SalesRow) []PeriodTotal {
	return periodTotals(rows, func(r mart.SalesRow) int { return r.Month })
}

func periodTotals(rows []mart.SalesRow, periodOf func(mart.SalesRow) int) []PeriodTotal {
	totals := make(map[int]*PeriodTotal)
	for _, r := range rows {
		p := periodOf(r)
		t, ok := totals[p]
		if !ok {
			t = &PeriodTotal{Period: p}
			totals[p] = t
		}
		t.Sold += r.TotalSold
		t.Revenue += r.TotalRevenue
		t.Books++
	}

	out := make([]PeriodTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b PeriodTotal) int { return cmp.Compare(a.Period, b.Period) })
	return out
}
