//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package mart reads the reporting views and fact table into typed rows.
package mart

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
)

// SalesRow is one row of book_sales_mart.
type SalesRow struct {
	Year         int      `db:"collect_year"`
	Month        int      `db:"collect_month"`
	Category     *string  `db:"category_2"`
	ProductID    int      `db:"product_id"`
	Title        string   `db:"title"`
	AuthorID     int      `db:"author_id"`
	AuthorName   string   `db:"author_name"`
	TotalSold    int64    `db:"total_sold"`
	TotalRevenue float64  `db:"total_revenue"`
	AvgRating    *float64 `db:"avg_rating"`
	RecordCount  int64    `db:"record_count"`
}

// Rating returns the average rating, or zero when no fact carried one.
func (r SalesRow) Rating() float64 {
	if r.AvgRating == nil {
		return 0
	}
	return *r.AvgRating
}

// TopMonthlyRow is one row of top_10_monthly.
type TopMonthlyRow struct {
	Year      int    `db:"collect_year" csv:"collect_year"`
	Month     int    `db:"collect_month" csv:"collect_month"`
	Rank      int    `db:"sales_rank" csv:"rank"`
	ProductID int    `db:"product_id" csv:"product_id"`
	Title     string `db:"title" csv:"title"`
	TotalSold int64  `db:"total_sold" csv:"total_sold"`
}

// CategoryDiscount is the mean discount price of a top level category.
type CategoryDiscount struct {
	Category         string  `db:"category_1"`
	Facts            int64   `db:"facts"`
	AvgDiscountPrice float64 `db:"avg_discount_price"`
}

// DiscountSold pairs a fact's discount percentage with its sold count.
type DiscountSold struct {
	DiscountPercent float64 `db:"discount_percent"`
	Sold            float64 `db:"sold_count_numeric"`
}

// Column describes a column of a table or view.
type Column struct {
	Name     string `db:"column_name"`
	DataType string `db:"data_type"`
	NotNull  bool   `db:"not_null"`
}

const salesRowsSQL = `
SELECT collect_year, collect_month, category_2, product_id, title,
       author_id, author_name,
       total_sold::bigint AS total_sold,
       total_revenue::float8 AS total_revenue,
       avg_rating::float8 AS avg_rating,
       record_count
FROM book_sales_mart
ORDER BY collect_year, collect_month, total_revenue DESC, product_id, author_id
`

// SalesRows returns every book_sales_mart row.
func SalesRows(ctx context.Context, database db.DB) ([]SalesRow, error) {
	return collect[SalesRow](ctx, database, "book_sales_mart", salesRowsSQL)
}

const topMonthlySQL = `
SELECT collect_year, collect_month, sales_rank, product_id, title,
       total_sold::bigint AS total_sold
FROM top_10_monthly
ORDER BY collect_year, collect_month, sales_rank
`

// TopMonthly returns the monthly top 10 ranking for every month.
func TopMonthly(ctx context.Context, database db.DB) ([]TopMonthlyRow, error) {
	return collect[TopMonthlyRow](ctx, database, "top_10_monthly", topMonthlySQL)
}

const latestTopMonthlySQL = `
SELECT collect_year, collect_month, sales_rank, product_id, title,
       total_sold::bigint AS total_sold
FROM top_10_monthly
WHERE (collect_year, collect_month) = (
    SELECT collect_year, collect_month
    FROM top_10_monthly
    WHERE collect_year IS NOT NULL AND collect_month IS NOT NULL
    ORDER BY collect_year DESC, collect_month DESC
    LIMIT 1
)
ORDER BY sales_rank
`

// LatestTopMonthly returns the ranking of the most recent month.
func LatestTopMonthly(ctx context.Context, database db.DB) ([]TopMonthlyRow, error) {
	return collect[TopMonthlyRow](ctx, database, "top_10_monthly", latestTopMonthlySQL)
}

const categoryDiscountsSQL = `
SELECT c.category_1,
       COUNT(*) AS facts,
       AVG(f.discount_price)::float8 AS avg_discount_price
FROM fact_book_sales f
JOIN dim_category c ON f.category_id = c.category_id
WHERE f.discount_price IS NOT NULL
GROUP BY c.category_1
ORDER BY avg_discount_price DESC, c.category_1
`

// CategoryDiscounts returns the mean discount price per top level category.
func CategoryDiscounts(ctx context.Context, database db.DB) ([]CategoryDiscount, error) {
	return collect[CategoryDiscount](ctx, database, "fact_book_sales", categoryDiscountsSQL)
}

const discountSoldSQL = `
SELECT discount_percent::float8 AS discount_percent,
       sold_count_numeric::float8 AS sold_count_numeric
FROM fact_book_sales
WHERE discount_percent IS NOT NULL AND sold_count_numeric IS NOT NULL
`

// DiscountSoldPairs returns every fact with both a discount and a sold count.
func DiscountSoldPairs(ctx context.Context, database db.DB) ([]DiscountSold, error) {
	return collect[DiscountSold](ctx, database, "fact_book_sales", discountSoldSQL)
}

// information_schema.columns does not list materialized views, so the
// catalog is read directly.
const columnsSQL = `
SELECT a.attname AS column_name,
       format_type(a.atttypid, a.atttypmod) AS data_type,
       a.attnotnull AS not_null
FROM pg_catalog.pg_attribute a
WHERE a.attrelid = to_regclass($1)
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum
`

// Columns lists the columns of a table, view or materialized view.
func Columns(ctx context.Context, database db.DB, relation string) ([]Column, error) {
	exists, err := db.RelationExists(ctx, database, relation)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("relation %s does not exist", relation)
	}
	return collect[Column](ctx, database, relation, columnsSQL, relation)
}

// Sample holds the first rows of a relation rendered as text.
type Sample struct {
	Header []string
	Rows   [][]string
}

// SampleRows returns up to limit rows of relation.
func SampleRows(ctx context.Context, database db.DB, relation string, limit int) (Sample, error) {
	var sample Sample

	sql := fmt.Sprintf("SELECT * FROM %s LIMIT %d", db.RelationIdentifier(relation), limit)
	rows, err := database.Query(ctx, sql)
	if err != nil {
		return sample, fmt.Errorf("failed to sample %s: %w", relation, err)
	}
	defer rows.Close()

	for _, fd := range rows.FieldDescriptions() {
		sample.Header = append(sample.Header, fd.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return sample, err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = FormatValue(v)
		}
		sample.Rows = append(sample.Rows, cells)
	}
	return sample, rows.Err()
}

func collect[T any](ctx context.Context, database db.DB, relation, sql string, args ...any) ([]T, error) {
	rows, err := database.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", relation, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", relation, err)
	}
	return out, nil
}
