//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package stage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
)

// Generator produces synthetic crawl snapshots.
type Generator struct {
	faker     *Faker
	rows      int
	snapshots int
	start     time.Time
	end       time.Time
}

// NewGenerator creates a generator from the seed configuration.
func NewGenerator(cfg *config.Config) (*Generator, error) {
	if err := cfg.ValidateSeed(); err != nil {
		return nil, err
	}
	start, end, err := cfg.SeedRange()
	if err != nil {
		return nil, err
	}

	faker := NewFaker()
	if cfg.Seed.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed.Seed)
	}

	return &Generator{
		faker:     faker,
		rows:      cfg.Seed.Rows,
		snapshots: cfg.Seed.Snapshots,
		start:     start,
		end:       end.Add(24*time.Hour - time.Second),
	}, nil
}

// CollectTimes returns one crawl timestamp per snapshot, in order, spread
// evenly over the date range and truncated to the hour.
func (g *Generator) CollectTimes() []time.Time {
	span := g.end.Sub(g.start)
	step := span / time.Duration(g.snapshots)
	times := make([]time.Time, g.snapshots)
	for i := range times {
		from := g.start.Add(step * time.Duration(i))
		times[i] = g.faker.DateRange(from, from.Add(step)).Truncate(time.Hour)
	}
	return times
}

// Books returns the generated rows. Each catalogue book appears once per
// snapshot with a non-decreasing sold count.
func (g *Generator) Books() []Book {
	times := g.CollectTimes()
	catalogue := (g.rows + g.snapshots - 1) / g.snapshots

	books := make([]Book, 0, g.rows)
	for i := 0; i < catalogue && len(books) < g.rows; i++ {
		base := g.book()
		sold := g.faker.Sold()
		for _, ts := range times {
			if len(books) == g.rows {
				break
			}
			b := base
			collected := ts
			n := sold
			text := SoldText(n)
			b.TimeCollect = &collected
			b.SoldCountNumeric = &n
			b.SoldCount = &text
			books = append(books, b)

			if sold > 0 {
				sold += int32(g.faker.Int(0, int(sold/10)+5))
			}
		}
	}
	return books
}

func (g *Generator) book() Book {
	f := g.faker
	title := f.Title()
	author := f.Author()
	publisher := f.Publisher()
	supplier := f.Supplier()
	c1, c2, c3 := f.Category()
	language := f.Language()
	pages := int32(f.Int(80, 900))
	weight := float64(f.Int(150, 1200))
	dims := f.Dimensions()
	year := int32(f.Int(2005, g.start.Year()))
	url := f.URL(title)
	img := url[:len(url)-len(".html")] + ".jpg"
	price := f.Price()
	discount := f.Discount()
	discounted := price * (100 - discount) / 100
	rating, ratingCount := f.Rating()

	b := Book{
		Title:           &title,
		Author:          &author,
		Publisher:       &publisher,
		Supplier:        &supplier,
		Category1:       &c1,
		Category2:       &c2,
		Language:        &language,
		PageCount:       &pages,
		Weight:          &weight,
		Dimensions:      &dims,
		PublishYear:     &year,
		URL:             &url,
		URLImg:          &img,
		OriginalPrice:   &price,
		DiscountPrice:   &discounted,
		DiscountPercent: &discount,
		Rating:          &rating,
		RatingCount:     &ratingCount,
	}
	if c3 != "" {
		b.Category3 = &c3
	}
	return b
}

// Generate writes synthetic rows into staging_books in batches, in one
// transaction, and returns the number of rows staged. cfg.Stage.Truncate
// empties the table first.
func Generate(ctx context.Context, database db.TxDB, cfg *config.Config) (int64, error) {
	gen, err := NewGenerator(cfg)
	if err != nil {
		return 0, err
	}

	books := gen.Books()
	batchSize := cfg.Stage.BatchSize

	logging.Info().
		Int("rows", len(books)).
		Int("snapshots", gen.snapshots).
		Uint64("seed", cfg.Seed.Seed).
		Msg("Generating staging data")

	progress := NewProgressReporter("seed", int64(len(books)), int64(batchSize)*10)
	err = inStagingTx(ctx, database, cfg.Stage.Truncate, func(tx pgx.Tx) error {
		for start := 0; start < len(books); start += batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := min(start+batchSize, len(books))
			n, err := CopyBooks(ctx, tx, books[start:end])
			if err != nil {
				return err
			}
			progress.Update(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	progress.Done()

	return progress.Rows(), nil
}
