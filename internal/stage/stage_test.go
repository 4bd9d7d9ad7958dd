package stage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
)

func TestParseSoldCount(t *testing.T) {
	tests := []struct {
		in     string
		want   int32
		wantOK bool
	}{
		{"Đã bán 2,3k", 2300, true},
		{"1.2k sold", 1200, true},
		{"Đã bán 15", 15, true},
		{"Đã bán 1k", 1000, true},
		{"1,024", 1024, true},
		{"2.5M", 2500000, true},
		{"  742  ", 742, true},
		{"", 0, false},
		{"Chưa bán", 0, false},
		{"Đã bán 120 món", 120, true},
		{"120 more sold", 120, true},
		{"Sold 5 Min ago", 5, true},
		{"3k+ sold", 3000, true},
		{"Đã bán 4 k", 4000, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSoldCount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSoldTextRoundTrip(t *testing.T) {
	for _, n := range []int32{0, 7, 999, 1000, 2300, 15000} {
		got, ok := ParseSoldCount(SoldText(n))
		require.True(t, ok, SoldText(n))
		assert.Equal(t, n, got, SoldText(n))
	}
	assert.Equal(t, "Đã bán 2,3k", SoldText(2300))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	for _, in := range []string{"2025-03-14T09:30:00Z", "2025-03-14 09:30:00", "2025-03-14T09:30:00"} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	day, err := ParseTimestamp("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, 14, day.Day())

	_, err = ParseTimestamp("14/03/2025")
	assert.Error(t, err)
}

func TestCSVBookConversion(t *testing.T) {
	raw := csvBook{
		Title:         "  Dế Mèn Phiêu Lưu Ký ",
		Author:        "Tô Hoài",
		Category1:     "Domestic Books",
		PageCount:     "144.0",
		Weight:        "200.5",
		DiscountPrice: "45000",
		Rating:        "4.8",
		SoldCount:     "Đã bán 2,3k",
		TimeCollect:   "2025-03-14 09:30:00",
	}

	b, err := raw.book()
	require.NoError(t, err)

	require.NotNil(t, b.Title)
	assert.Equal(t, "Dế Mèn Phiêu Lưu Ký", *b.Title)
	assert.Nil(t, b.Publisher, "empty cells become NULL")
	assert.Nil(t, b.Category2)
	require.NotNil(t, b.PageCount)
	assert.Equal(t, int32(144), *b.PageCount)
	require.NotNil(t, b.SoldCountNumeric)
	assert.Equal(t, int32(2300), *b.SoldCountNumeric)
	require.NotNil(t, b.TimeCollect)
	assert.Equal(t, 2025, b.TimeCollect.Year())

	assert.Len(t, b.Values(), len(Columns))
}

func TestCSVBookExplicitSoldWins(t *testing.T) {
	b, err := csvBook{Title: "x", SoldCount: "Đã bán 5k", SoldCountNumeric: "4980"}.book()
	require.NoError(t, err)
	require.NotNil(t, b.SoldCountNumeric)
	assert.Equal(t, int32(4980), *b.SoldCountNumeric)
}

func TestCSVBookInvalidNumber(t *testing.T) {
	_, err := csvBook{Title: "x", Rating: "five"}.book()
	assert.ErrorContains(t, err, "rating")

	_, err = csvBook{Title: "x", TimeCollect: "yesterday"}.book()
	assert.ErrorContains(t, err, "time_collect")

	_, err = csvBook{Title: "x", PageCount: "312.7"}.book()
	assert.ErrorContains(t, err, "page_count")

	b, err := csvBook{Title: "x", PageCount: "312.0"}.book()
	require.NoError(t, err)
	require.NotNil(t, b.PageCount)
	assert.Equal(t, int32(312), *b.PageCount)
}

func seedConfig(rows, snapshots int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Database.Name = "book_dw"
	cfg.Seed.Rows = rows
	cfg.Seed.Snapshots = snapshots
	cfg.Seed.Seed = 42
	return cfg
}

func TestGeneratorDeterministic(t *testing.T) {
	g1, err := NewGenerator(seedConfig(30, 3))
	require.NoError(t, err)
	g2, err := NewGenerator(seedConfig(30, 3))
	require.NoError(t, err)

	b1, b2 := g1.Books(), g2.Books()
	require.Len(t, b1, 30)
	require.Len(t, b2, 30)
	for i := range b1 {
		assert.Equal(t, *b1[i].Title, *b2[i].Title)
		assert.Equal(t, *b1[i].SoldCountNumeric, *b2[i].SoldCountNumeric)
	}
}

func TestGeneratorSnapshots(t *testing.T) {
	cfg := seedConfig(20, 4)
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	books := g.Books()
	require.Len(t, books, 20)

	start, end, err := cfg.SeedRange()
	require.NoError(t, err)

	// Rows come in groups of one book per snapshot.
	for i := 0; i < len(books); i += 4 {
		group := books[i : i+4]
		for j, b := range group {
			require.NotNil(t, b.TimeCollect)
			assert.False(t, b.TimeCollect.Before(start.Truncate(time.Hour)))
			assert.True(t, b.TimeCollect.Before(end.AddDate(0, 0, 1)))
			assert.Equal(t, *group[0].Title, *b.Title)
			if j > 0 {
				assert.GreaterOrEqual(t, *b.SoldCountNumeric, *group[j-1].SoldCountNumeric)
				assert.False(t, b.TimeCollect.Before(*group[j-1].TimeCollect))
			}
			parsed, ok := ParseSoldCount(*b.SoldCount)
			assert.True(t, ok)
			assert.InDelta(t, *b.SoldCountNumeric, parsed, float64(*b.SoldCountNumeric)/20+1)
		}
	}
}

func TestGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := seedConfig(0, 1)
	_, err := NewGenerator(cfg)
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "the-hobbit-2nd-ed", Slug("The Hobbit (2nd Ed.)"))
	assert.Equal(t, "", Slug("!!!"))
}

func TestChooseWeighted(t *testing.T) {
	f := NewFakerWithSeed(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, "only", ChooseWeighted(f, []string{"never", "only"}, []int{0, 1}))
	}
	assert.Equal(t, "", Choose(f, []string{}))
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("test", 10, 0)
	p.Update(4)
	p.Update(6)
	p.Done()
	assert.Equal(t, int64(10), p.Rows())
}
