//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package transform

// View names.
const (
	SalesMartView  = "book_sales_mart"
	TopMonthlyView = "top_10_monthly"
)

// TopPerMonth is the number of products kept per month in top_10_monthly.
const TopPerMonth = 10

const deriveDatesSQL = `
UPDATE dim_date
SET
    collect_date  = DATE(time_collect),
    collect_year  = EXTRACT(YEAR FROM time_collect)::INTEGER,
    collect_month = EXTRACT(MONTH FROM time_collect)::INTEGER,
    collect_day   = EXTRACT(DAY FROM time_collect)::INTEGER,
    collect_hour  = EXTRACT(HOUR FROM time_collect)::INTEGER
WHERE time_collect IS NOT NULL
`

var createFactIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_fact_date_product ON fact_book_sales (date_id, product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_category ON fact_book_sales (category_id)`,
}

var buildSalesMartSQL = []string{
	`DROP MATERIALIZED VIEW IF EXISTS book_sales_mart`,
	`CREATE MATERIALIZED VIEW book_sales_mart AS
SELECT
    d.collect_year,
    d.collect_month,
    c.category_2,
    p.product_id,
    p.title,
    a.author_id,
    a.author_name,
    SUM(COALESCE(f.sold_count_numeric, 0)) AS total_sold,
    SUM(COALESCE(f.discount_price, 0) * COALESCE(f.sold_count_numeric, 0)) AS total_revenue,
    AVG(f.rating) AS avg_rating,
    COUNT(*) AS record_count
FROM fact_book_sales f
JOIN dim_product p ON f.product_id = p.product_id
JOIN dim_author a ON f.author_id = a.author_id
JOIN dim_category c ON f.category_id = c.category_id
JOIN dim_date d ON f.date_id = d.date_id
WHERE COALESCE(f.sold_count_numeric, 0) > 0
GROUP BY d.collect_year, d.collect_month, c.category_2, p.product_id, p.title, a.author_id, a.author_name`,
	`CREATE INDEX IF NOT EXISTS idx_book_sales_mart_year_month_rev
    ON book_sales_mart (collect_year, collect_month, total_revenue DESC)`,
}

var buildTopMonthlySQL = []string{
	`DROP MATERIALIZED VIEW IF EXISTS top_10_monthly`,
	`CREATE MATERIALIZED VIEW top_10_monthly AS
WITH ranked AS (
    SELECT
        d.collect_year,
        d.collect_month,
        p.product_id,
        p.title,
        SUM(COALESCE(f.sold_count_numeric, 0)) AS total_sold,
        ROW_NUMBER() OVER (
            PARTITION BY d.collect_year, d.collect_month
            ORDER BY SUM(COALESCE(f.sold_count_numeric, 0)) DESC, p.product_id
        ) AS sales_rank
    FROM fact_book_sales f
    JOIN dim_date d ON f.date_id = d.date_id
    JOIN dim_product p ON f.product_id = p.product_id
    GROUP BY d.collect_year, d.collect_month, p.product_id, p.title
)
SELECT collect_year, collect_month, product_id, title, total_sold, sales_rank
FROM ranked
WHERE sales_rank <= 10`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_top_10_monthly_year_month_product
    ON top_10_monthly (collect_year, collect_month, product_id)`,
}

const refreshSalesMartSQL = `REFRESH MATERIALIZED VIEW book_sales_mart`

// CONCURRENTLY relies on uq_top_10_monthly_year_month_product.
const refreshTopMonthlySQL = `REFRESH MATERIALIZED VIEW CONCURRENTLY top_10_monthly`
