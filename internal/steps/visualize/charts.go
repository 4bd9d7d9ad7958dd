//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package visualize

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pgEdge/pgedge-bookdw/internal/analysis"
	"github.com/pgEdge/pgedge-bookdw/internal/mart"
)

// Chart is one PNG of the dashboard. Build returns one plot per panel,
// laid out left to right.
type Chart struct {
	Name  string
	Build func(rows []mart.SalesRow) ([]*plot.Plot, error)
}

// FileName returns the PNG file name of the chart.
func (c Chart) FileName() string {
	return c.Name + ".png"
}

const (
	topN           = 10
	topCategories  = 15
	histogramBins  = 20
	noDataMessage  = "No data available"
	noRatingsLabel = "No rating data available"
)

// Charts returns every dashboard chart in render order.
func Charts() []Chart {
	return []Chart{
		{Name: "top_10_bestsellers", Build: bestsellers},
		{Name: "top_10_revenue", Build: topRevenue},
		{Name: "category_distribution", Build: categoryDistribution},
		{Name: "top_authors", Build: topAuthors},
		{Name: "time_analysis", Build: timeAnalysis},
		{Name: "rating_distribution", Build: ratingDistribution},
		{Name: "correlation_analysis", Build: correlation},
	}
}

func bestsellers(rows []mart.SalesRow) ([]*plot.Plot, error) {
	p := newPlot("Top 10 Best Selling Books", "Total sold", "")
	top := analysis.TopBySold(rows, topN)
	if len(top) == 0 {
		return []*plot.Plot{p}, note(p, noDataMessage)
	}

	names := make([]string, len(top))
	values := make([]float64, len(top))
	for i, r := range top {
		names[i] = r.Title
		values[i] = float64(r.TotalSold)
	}
	err := horizontalBars(p, names, values, colorBestsellers, func(v float64) string {
		return humanize.Comma(int64(v))
	})
	return []*plot.Plot{p}, err
}

func topRevenue(rows []mart.SalesRow) ([]*plot.Plot, error) {
	p := newPlot("Top 10 Books by Revenue", "Total revenue (VND)", "")
	top := analysis.TopByRevenue(rows, topN)
	if len(top) == 0 {
		return []*plot.Plot{p}, note(p, noDataMessage)
	}

	names := make([]string, len(top))
	values := make([]float64, len(top))
	for i, r := range top {
		names[i] = r.Title
		values[i] = r.TotalRevenue
	}
	err := horizontalBars(p, names, values, colorRevenue, billions)
	return []*plot.Plot{p}, err
}

func categoryDistribution(rows []mart.SalesRow) ([]*plot.Plot, error) {
	p := newPlot("Books by Category", "Number of books", "")
	counts := analysis.CategoryCounts(rows, topCategories)
	if len(counts) == 0 {
		return []*plot.Plot{p}, note(p, noDataMessage)
	}

	names := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		names[i] = c.Category
		values[i] = float64(c.Books)
	}
	err := horizontalBars(p, names, values, colorCategories, func(v float64) string {
		return strconv.Itoa(int(v))
	})
	return []*plot.Plot{p}, err
}

func topAuthors(rows []mart.SalesRow) ([]*plot.Plot, error) {
	sold := newPlot("Top 10 Authors by Books Sold", "Total sold", "")
	revenue := newPlot("Top 10 Authors by Revenue", "Total revenue (billion VND)", "")
	plots := []*plot.Plot{sold, revenue}

	authors := analysis.TopAuthors(rows, topN)
	if len(authors) == 0 {
		if err := note(sold, noDataMessage); err != nil {
			return nil, err
		}
		return plots, note(revenue, noDataMessage)
	}

	names := make([]string, len(authors))
	soldValues := make([]float64, len(authors))
	revenueValues := make([]float64, len(authors))
	for i, a := range authors {
		names[i] = a.Author
		soldValues[i] = float64(a.Sold)
		revenueValues[i] = a.Revenue / 1e9
	}

	if err := horizontalBars(sold, names, soldValues, colorAuthorSold, func(v float64) string {
		return humanize.Comma(int64(v))
	}); err != nil {
		return nil, err
	}
	err := horizontalBars(revenue, names, revenueValues, colorAuthorRev, func(v float64) string {
		return fmt.Sprintf("%.1fB", v)
	})
	return plots, err
}

func timeAnalysis(rows []mart.SalesRow) ([]*plot.Plot, error) {
	yearly := newPlot("Sales by Year", "Year", "Total sold")
	monthly := newPlot("Sales by Month", "Month", "Total sold")

	panels := []struct {
		p      *plot.Plot
		totals []analysis.PeriodTotal
		color  color.Color
		single string
	}{
		{yearly, analysis.Yearly(rows), colorYearly, "Only one year of data"},
		{monthly, analysis.MonthOfYear(rows), colorMonthly, "Only one month of data"},
	}

	for _, panel := range panels {
		if len(panel.totals) <= 1 {
			if err := note(panel.p, panel.single); err != nil {
				return nil, err
			}
			continue
		}
		names := make([]string, len(panel.totals))
		values := make([]float64, len(panel.totals))
		for i, t := range panel.totals {
			names[i] = strconv.Itoa(t.Period)
			values[i] = float64(t.Sold)
		}
		if err := verticalBars(panel.p, names, values, panel.color); err != nil {
			return nil, err
		}
	}
	return []*plot.Plot{yearly, monthly}, nil
}

func ratingDistribution(rows []mart.SalesRow) ([]*plot.Plot, error) {
	p := newPlot("Rating Distribution", "Average rating", "Number of books")
	ratings := analysis.ValidRatings(rows)
	if len(ratings) == 0 {
		return []*plot.Plot{p}, note(p, noRatingsLabel)
	}

	hist, err := plotter.NewHist(plotter.Values(ratings), histogramBins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = colorRatings
	hist.LineStyle.Color = color.Black
	hist.LineStyle.Width = vg.Points(0.5)
	addGrid(p, true, true)
	p.Add(hist)

	peak := 0.0
	for _, b := range hist.Bins {
		peak = math.Max(peak, b.Weight)
	}

	mean := analysis.Mean(ratings)
	line, err := plotter.NewLine(plotter.XYs{{X: mean, Y: 0}, {X: mean, Y: peak}})
	if err != nil {
		return nil, err
	}
	line.Color = colorMean
	line.Width = vg.Points(2)
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(line)

	p.Legend.Add(fmt.Sprintf("Mean rating: %.2f", mean), line)
	p.Legend.Top = true
	return []*plot.Plot{p}, nil
}

func correlation(rows []mart.SalesRow) ([]*plot.Plot, error) {
	p := newPlot("Books Sold vs Revenue", "Total sold", "Total revenue (VND)")
	if len(rows) == 0 {
		return []*plot.Plot{p}, note(p, noDataMessage)
	}

	sold, revenue := analysis.SoldAndRevenue(rows)
	xys := make(plotter.XYs, len(rows))
	for i := range rows {
		xys[i] = plotter.XY{X: sold[i], Y: revenue[i]}
	}

	cm := moreland.ExtendedKindlmann()
	lo, hi := ratingRange(rows)
	cm.SetMin(lo)
	cm.SetMax(hi)

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	unrated := color.Gray{Y: 160}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		style := draw.GlyphStyle{Radius: vg.Points(4), Shape: draw.CircleGlyph{}, Color: unrated}
		if rows[i].AvgRating != nil {
			if c, err := cm.At(math.Max(lo, math.Min(hi, *rows[i].AvgRating))); err == nil {
				style.Color = c
			}
		}
		return style
	}
	addGrid(p, true, true)
	p.Add(scatter)

	// Legend swatches stand in for a colour bar.
	for _, v := range []float64{lo, hi} {
		c, err := cm.At(v)
		if err != nil {
			return nil, err
		}
		p.Legend.Add(fmt.Sprintf("Rating %.1f", v), swatch{c})
	}
	p.Legend.Add("Unrated", swatch{unrated})
	p.Legend.Top = true
	p.Legend.Left = true
	p.Y.Tick.Marker = plainTicks{}

	if r, ok := analysis.Correlation(sold, revenue); ok {
		p.Title.Text += fmt.Sprintf(" (r = %.2f)", r)
	}
	return []*plot.Plot{p}, nil
}

func ratingRange(rows []mart.SalesRow) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		if r.AvgRating != nil {
			lo = math.Min(lo, *r.AvgRating)
			hi = math.Max(hi, *r.AvgRating)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 5
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// swatch is a legend thumbnail drawing a single coloured circle.
type swatch struct {
	color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	c.DrawGlyph(draw.GlyphStyle{Color: s.Color, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}, center)
}

// plainTicks labels the default ticks without exponent notation.
type plainTicks struct{}

func (plainTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = humanize.Comma(int64(math.Round(ticks[i].Value)))
		}
	}
	return ticks
}

func billions(v float64) string {
	return fmt.Sprintf("%.1fB VND", v/1e9)
}

// horizontalBars draws one bar per name with the first item at the top
// and a value label after each bar.
func horizontalBars(p *plot.Plot, names []string, values []float64, c color.Color, label func(float64) string) error {
	n := len(values)
	vals := make(plotter.Values, n)
	ticks := make([]string, n)
	xys := make(plotter.XYs, n)
	texts := make([]string, n)
	peak := 0.0

	for i := range values {
		j := n - 1 - i
		vals[j] = values[i]
		ticks[j] = shorten(names[i])
		xys[j] = plotter.XY{X: values[i], Y: float64(j)}
		texts[j] = label(values[i])
		peak = math.Max(peak, values[i])
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = c
	bars.LineStyle.Width = 0

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].YAlign = text.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(9)
	}
	labels.Offset = vg.Point{X: vg.Points(4)}

	addGrid(p, true, false)
	p.Add(bars, labels)
	p.NominalY(ticks...)
	p.X.Min = 0
	// Room for the value labels.
	p.X.Max = peak * 1.2
	if peak == 0 {
		p.X.Max = 1
	}
	return nil
}

func verticalBars(p *plot.Plot, names []string, values []float64, c color.Color) error {
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return err
	}
	bars.Color = c
	bars.LineStyle.Width = 0

	xys := make(plotter.XYs, len(values))
	texts := make([]string, len(values))
	peak := 0.0
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		texts[i] = humanize.Comma(int64(v))
		peak = math.Max(peak, v)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].Font.Size = vg.Points(9)
	}
	labels.Offset = vg.Point{Y: vg.Points(3)}

	addGrid(p, false, true)
	p.Add(bars, labels)
	p.NominalX(names...)
	p.Y.Min = 0
	p.Y.Max = peak * 1.15
	if peak == 0 {
		p.Y.Max = 1
	}
	return nil
}
