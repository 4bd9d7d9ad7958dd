package visualize

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Bar colours per chart.
var (
	colorBestsellers = hexColor("#FF6B6B")
	colorRevenue     = hexColor("#4ECDC4")
	colorCategories  = hexColor("#A29BFE")
	colorAuthorSold  = hexColor("#45B7D1")
	colorAuthorRev   = hexColor("#96CE54")
	colorYearly      = hexColor("#FECA57")
	colorMonthly     = hexColor("#FF9FF3")
	colorRatings     = hexColor("#54A0FF")
	colorMean        = hexColor("#E74C3C")
)

// maxLabelRunes bounds tick labels so long titles do not squeeze the plot.
const maxLabelRunes = 40

func hexColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		panic(fmt.Sprintf("invalid colour %q", s))
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func shorten(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelRunes-1]) + "…"
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// addGrid draws light grid lines behind the data.
func addGrid(p *plot.Plot, vertical, horizontal bool) {
	g := plotter.NewGrid()
	g.Vertical.Color = color.Gray{Y: 220}
	g.Horizontal.Color = color.Gray{Y: 220}
	if !vertical {
		g.Vertical.Width = 0
	}
	if !horizontal {
		g.Horizontal.Width = 0
	}
	p.Add(g)
}

// note replaces the plot content with a centred message.
func note(p *plot.Plot, msg string) error {
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{msg},
	})
	if err != nil {
		return err
	}
	labels.TextStyle[0].XAlign = text.XCenter
	labels.TextStyle[0].YAlign = text.YCenter
	labels.TextStyle[0].Font.Size = vg.Points(14)

	p.Add(labels)
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	return nil
}
