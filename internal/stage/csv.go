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
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jszwec/csvutil"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
)

// csvBook is the raw shape of a crawl CSV row. Columns are matched by
// header name; unknown columns are ignored and missing ones stay empty.
type csvBook struct {
	Title            string `csv:"title"`
	Author           string `csv:"author"`
	Publisher        string `csv:"publisher"`
	Supplier         string `csv:"supplier"`
	Category1        string `csv:"category_1"`
	Category2        string `csv:"category_2"`
	Category3        string `csv:"category_3"`
	Language         string `csv:"language"`
	PageCount        string `csv:"page_count"`
	Weight           string `csv:"weight"`
	Dimensions       string `csv:"dimensions"`
	PublishYear      string `csv:"publish_year"`
	URL              string `csv:"url"`
	URLImg           string `csv:"url_img"`
	OriginalPrice    string `csv:"original_price"`
	DiscountPrice    string `csv:"discount_price"`
	DiscountPercent  string `csv:"discount_percent"`
	Rating           string `csv:"rating"`
	RatingCount      string `csv:"rating_count"`
	SoldCount        string `csv:"sold_count"`
	SoldCountNumeric string `csv:"sold_count_numeric"`
	TimeCollect      string `csv:"time_collect"`
}

// TimestampLayouts are the accepted time_collect formats, tried in order.
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportCSV decodes a crawl CSV and copies it into staging_books in
// batches of opts.BatchSize, emptying the table first when opts.Truncate is
// set. The import runs in one transaction: on any error staging_books is
// left as it was. It returns the number of rows staged.
func ImportCSV(ctx context.Context, database db.TxDB, r io.Reader, opts config.StageConfig) (int64, error) {
	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = 1000
	}

	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("csv input is empty")
		}
		return 0, fmt.Errorf("failed to read csv header: %w", err)
	}
	if !hasColumn(dec.Header(), "title") {
		return 0, fmt.Errorf("csv header has no title column")
	}

	progress := NewProgressReporter("csv", 0, int64(batchSize)*10)
	err = inStagingTx(ctx, database, opts.Truncate, func(tx pgx.Tx) error {
		batch := make([]Book, 0, batchSize)
		flush := func() error {
			n, err := CopyBooks(ctx, tx, batch)
			if err != nil {
				return err
			}
			progress.Update(n)
			batch = batch[:0]
			return nil
		}

		line := 1
		for {
			var raw csvBook
			if err := dec.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return fmt.Errorf("line %d: %w", line+1, err)
			}
			line++

			book, err := raw.book()
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			batch = append(batch, book)

			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})
	if err != nil {
		return 0, fmt.Errorf("csv import rolled back: %w", err)
	}

	progress.Done()
	return progress.Rows(), nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func (c csvBook) book() (Book, error) {
	b := Book{
		Title:      optString(c.Title),
		Author:     optString(c.Author),
		Publisher:  optString(c.Publisher),
		Supplier:   optString(c.Supplier),
		Category1:  optString(c.Category1),
		Category2:  optString(c.Category2),
		Category3:  optString(c.Category3),
		Language:   optString(c.Language),
		Dimensions: optString(c.Dimensions),
		URL:        optString(c.URL),
		URLImg:     optString(c.URLImg),
		SoldCount:  optString(c.SoldCount),
	}

	var err error
	if b.PageCount, err = optInt(c.PageCount, "page_count"); err != nil {
		return b, err
	}
	if b.PublishYear, err = optInt(c.PublishYear, "publish_year"); err != nil {
		return b, err
	}
	if b.RatingCount, err = optInt(c.RatingCount, "rating_count"); err != nil {
		return b, err
	}
	if b.SoldCountNumeric, err = optInt(c.SoldCountNumeric, "sold_count_numeric"); err != nil {
		return b, err
	}
	if b.Weight, err = optFloat(c.Weight, "weight"); err != nil {
		return b, err
	}
	if b.OriginalPrice, err = optFloat(c.OriginalPrice, "original_price"); err != nil {
		return b, err
	}
	if b.DiscountPrice, err = optFloat(c.DiscountPrice, "discount_price"); err != nil {
		return b, err
	}
	if b.DiscountPercent, err = optFloat(c.DiscountPercent, "discount_percent"); err != nil {
		return b, err
	}
	if b.Rating, err = optFloat(c.Rating, "rating"); err != nil {
		return b, err
	}
	if b.TimeCollect, err = optTime(c.TimeCollect); err != nil {
		return b, err
	}

	if b.SoldCountNumeric == nil && b.SoldCount != nil {
		if n, ok := ParseSoldCount(*b.SoldCount); ok {
			b.SoldCountNumeric = &n
		}
	}
	return b, nil
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optInt(s, column string) (*int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	// Crawlers sometimes write integers as floats ("312.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, fmt.Errorf("invalid %s %q", column, s)
	}
	n := int32(f)
	return &n, nil
}

func optFloat(s, column string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", column, s)
	}
	return &f, nil
}

func optTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseTimestamp parses a collection timestamp in any of TimestampLayouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time_collect %q", s)
}

// The k/m suffix only counts when it is not the start of a longer word
// ("120 món", "5 Min ago").
var soldCountPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s*(?:([kKmM])(?:[^\p{L}\p{N}]|$))?`)

// ParseSoldCount extracts a number from a listing's sold counter, such as
// "Đã bán 2,3k", "1.2k sold" or "1,024". With a k or m suffix the
// separator is a decimal point; without one it groups thousands.
func ParseSoldCount(s string) (int32, bool) {
	m := soldCountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	digits, suffix := m[1], strings.ToLower(m[2])
	if suffix == "" {
		digits = strings.NewReplacer(",", "", ".", "").Replace(digits)
		n, err := strconv.ParseInt(digits, 10, 32)
		if err != nil {
			return 0, false
		}
		return int32(n), true
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	switch suffix {
	case "k":
		f *= 1_000
	case "m":
		f *= 1_000_000
	}
	if f > math.MaxInt32 {
		return 0, false
	}
	return int32(math.Round(f)), true
}
