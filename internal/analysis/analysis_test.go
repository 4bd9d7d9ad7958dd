package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bookdw/internal/mart"
)

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func sampleRows() []mart.SalesRow {
	return []mart.SalesRow{
		{Year: 2025, Month: 1, Category: strPtr("Fiction"), ProductID: 1, Title: "A", AuthorName: "Ann",
			TotalSold: 100, TotalRevenue: 5_000_000, AvgRating: floatPtr(4.5), RecordCount: 2},
		{Year: 2025, Month: 1, Category: strPtr("Science"), ProductID: 2, Title: "B", AuthorName: "Bob",
			TotalSold: 300, TotalRevenue: 3_000_000, AvgRating: floatPtr(0), RecordCount: 1},
		{Year: 2025, Month: 2, Category: strPtr("Fiction"), ProductID: 1, Title: "A", AuthorName: "Ann",
			TotalSold: 150, TotalRevenue: 7_500_000, AvgRating: floatPtr(4.7), RecordCount: 3},
		{Year: 2024, Month: 12, Category: nil, ProductID: 3, Title: "C", AuthorName: "Cat",
			TotalSold: 50, TotalRevenue: 2_500_000, AvgRating: nil, RecordCount: 1},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows())

	assert.Equal(t, 4, s.Books)
	assert.Equal(t, int64(600), s.Sold)
	assert.InDelta(t, 18_000_000, s.Revenue, 0.001)
	assert.Equal(t, 3, s.Authors)
	assert.Equal(t, 2, s.Categories)
	assert.Equal(t, 2, s.RatedBooks, "zero and missing ratings are excluded")
	assert.InDelta(t, 4.6, s.MeanRating, 1e-9)
	assert.Equal(t, 2024, s.FirstYear)
	assert.Equal(t, 12, s.FirstMonth)
	assert.Equal(t, 2025, s.LastYear)
	assert.Equal(t, 2, s.LastMonth)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Books)
	assert.Zero(t, s.MeanRating)
}

func TestTopN(t *testing.T) {
	rows := sampleRows()

	top := TopBySold(rows, 2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(300), top[0].TotalSold)
	assert.Equal(t, int64(150), top[1].TotalSold)

	rev := TopByRevenue(rows, 10)
	require.Len(t, rev, 4)
	assert.Equal(t, 7_500_000.0, rev[0].TotalRevenue)

	// The input is left untouched.
	assert.Equal(t, int64(100), rows[0].TotalSold)
}

func TestAuthors(t *testing.T) {
	authors := Authors(sampleRows())
	require.Len(t, authors, 3)

	assert.Equal(t, "Ann", authors[0].Author)
	assert.Equal(t, 2, authors[0].Books)
	assert.Equal(t, int64(250), authors[0].Sold)
	assert.InDelta(t, 12_500_000, authors[0].Revenue, 0.001)
	assert.InDelta(t, 4.6, authors[0].MeanRating, 1e-9)

	assert.Equal(t, "Bob", authors[1].Author)
	assert.Equal(t, "Cat", authors[2].Author)
	assert.Zero(t, authors[2].MeanRating)

	assert.Len(t, TopAuthors(sampleRows(), 1), 1)
}

func TestCategories(t *testing.T) {
	cats := Categories(sampleRows())
	require.Len(t, cats, 2)

	assert.Equal(t, "Science", cats[0].Category)
	assert.Equal(t, "Fiction", cats[1].Category)
	assert.Equal(t, 2, cats[1].Books)
	assert.InDelta(t, 125, cats[1].MeanSoldPerRow, 1e-9)

	counts := CategoryCounts(sampleRows(), 15)
	assert.Equal(t, []CategoryCount{{"Fiction", 2}, {"Science", 1}}, counts)
	assert.Len(t, CategoryCounts(sampleRows(), 1), 1)
}

func TestTimeSeries(t *testing.T) {
	series := TimeSeries(sampleRows())
	require.Len(t, series, 3)

	assert.Equal(t, 2024, series[0].Year)
	assert.Equal(t, 12, series[0].Month)
	assert.Equal(t, 1, series[1].Month)
	assert.Equal(t, int64(400), series[1].Sold)
	assert.Equal(t, 2, series[1].Books)
	assert.InDelta(t, 2.25, series[1].MeanRating, 1e-9)
}

func TestPeriodTotals(t *testing.T) {
	years := Yearly(sampleRows())
	require.Len(t, years, 2)
	assert.Equal(t, PeriodTotal{Period: 2024, Sold: 50, Revenue: 2_500_000, Books: 1}, years[0])
	assert.Equal(t, int64(550), years[1].Sold)

	months := MonthOfYear(sampleRows())
	require.Len(t, months, 3)
	assert.Equal(t, []int{1, 2, 12}, []int{months[0].Period, months[1].Period, months[2].Period})
}

func TestCorrelation(t *testing.T) {
	r, ok := Correlation([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)

	r, ok = Correlation([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-9)

	_, ok = Correlation([]float64{1}, []float64{1})
	assert.False(t, ok)

	_, ok = Correlation([]float64{1, 2}, []float64{1})
	assert.False(t, ok)

	_, ok = Correlation([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.False(t, ok, "constant series has no correlation")
}

func TestMean(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestClean(t *testing.T) {
	rows := sampleRows()
	rows = append(rows, mart.SalesRow{Year: 2025, Month: 3, Title: "D", TotalSold: 0, TotalRevenue: 0})

	out := Clean(rows)
	require.Len(t, out, 5)

	assert.Equal(t, "Fiction", out[0].Category)
	assert.InDelta(t, 0.005, out[0].RevenueBillions, 1e-12)
	assert.InDelta(t, 50_000, out[0].PricePerBook, 1e-9)

	assert.Equal(t, UncategorizedLabel, out[3].Category)
	assert.Zero(t, out[3].AvgRating)

	assert.Equal(t, UnknownAuthorLabel, out[4].AuthorName)
	assert.Zero(t, out[4].PricePerBook, "no sales means no unit price")
}

func TestTopBooks(t *testing.T) {
	top := TopBooks(sampleRows(), 3)
	require.Len(t, top, 3)
	assert.Equal(t, "B", top[0].Title)
	assert.Equal(t, "Science", top[0].Category)
}
