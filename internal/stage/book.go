//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package stage fills the staging_books table from crawl CSV files or
// synthetic data.
package stage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
)

// StagingTable is the table written by this package.
const StagingTable = "staging_books"

// Book is one crawled listing. Nil fields are stored as NULL.
type Book struct {
	Title            *string
	Author           *string
	Publisher        *string
	Supplier         *string
	Category1        *string
	Category2        *string
	Category3        *string
	Language         *string
	PageCount        *int32
	Weight           *float64
	Dimensions       *string
	PublishYear      *int32
	URL              *string
	URLImg           *string
	OriginalPrice    *float64
	DiscountPrice    *float64
	DiscountPercent  *float64
	Rating           *float64
	RatingCount      *int32
	SoldCount        *string
	SoldCountNumeric *int32
	TimeCollect      *time.Time
}

// Columns lists the staging columns in the order of Book.Values.
var Columns = []string{
	"title", "author", "publisher", "supplier",
	"category_1", "category_2", "category_3",
	"language", "page_count", "weight", "dimensions", "publish_year",
	"url", "url_img",
	"original_price", "discount_price", "discount_percent",
	"rating", "rating_count",
	"sold_count", "sold_count_numeric", "time_collect",
}

// Values returns the column values for COPY.
func (b *Book) Values() []any {
	return []any{
		b.Title, b.Author, b.Publisher, b.Supplier,
		b.Category1, b.Category2, b.Category3,
		b.Language, b.PageCount, b.Weight, b.Dimensions, b.PublishYear,
		b.URL, b.URLImg,
		b.OriginalPrice, b.DiscountPrice, b.DiscountPercent,
		b.Rating, b.RatingCount,
		b.SoldCount, b.SoldCountNumeric, b.TimeCollect,
	}
}

// CopyBooks bulk copies books into staging_books.
func CopyBooks(ctx context.Context, database db.TxDB, books []Book) (int64, error) {
	if len(books) == 0 {
		return 0, nil
	}
	n, err := database.CopyFrom(ctx, pgx.Identifier{StagingTable}, Columns,
		pgx.CopyFromSlice(len(books), func(i int) ([]any, error) {
			return books[i].Values(), nil
		}))
	if err != nil {
		return n, fmt.Errorf("failed to copy into %s: %w", StagingTable, err)
	}
	return n, nil
}

// inStagingTx runs fn in one transaction, emptying staging_books first
// when truncate is set. On error nothing fn or the truncate did is kept.
func inStagingTx(ctx context.Context, database db.TxDB, truncate bool, fn func(tx pgx.Tx) error) error {
	return db.InTx(ctx, database, func(tx pgx.Tx) error {
		if truncate {
			if err := Truncate(ctx, tx); err != nil {
				return err
			}
		}
		return fn(tx)
	})
}

// Truncate empties staging_books.
func Truncate(ctx context.Context, database db.DB) error {
	if _, err := database.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{StagingTable}.Sanitize()); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", StagingTable, err)
	}
	logging.Info().Str("table", StagingTable).Msg("Staging table truncated")
	return nil
}

// ProgressReporter tracks and reports staging progress.
type ProgressReporter struct {
	source           string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter. A totalRows of zero
// means the total is unknown.
func NewProgressReporter(source string, totalRows int64, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		source:           source,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update adds rowsInserted and logs each time an interval is crossed.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		event := logging.Info().
			Str("source", p.source).
			Int64("rows", p.currentRow)
		if p.totalRows > 0 {
			event = event.
				Int64("total", p.totalRows).
				Float64("percent", float64(p.currentRow)/float64(p.totalRows)*100)
		}
		event.Msg("Staging rows")
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("source", p.source).
		Int64("rows", p.currentRow).
		Msg("Staging complete")
}
