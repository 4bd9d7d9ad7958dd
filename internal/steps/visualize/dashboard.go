package visualize

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pgEdge/pgedge-bookdw/internal/analysis"
	"github.com/pgEdge/pgedge-bookdw/pkg/version"
)

//go:embed templates/dashboard.html.tmpl
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// StatCard is one headline number of the dashboard.
type StatCard struct {
	Label string
	Value string
	Unit  string
}

// ChartCard links one PNG from the dashboard.
type ChartCard struct {
	Title string
	File  string
}

// Dashboard is the data rendered into the dashboard page.
type Dashboard struct {
	Title       string
	Subtitle    string
	Cards       []StatCard
	Charts      []ChartCard
	Version     string
	GeneratedAt string
}

// Cards returns the stat cards for a summary.
func Cards(s analysis.Summary) []StatCard {
	return []StatCard{
		{Label: "Total Books", Value: humanize.Comma(int64(s.Books)), Unit: "books"},
		{Label: "Total Revenue", Value: humanize.Commaf(math.Round(s.Revenue)), Unit: "VND"},
		{Label: "Total Sold", Value: humanize.Comma(s.Sold), Unit: "copies"},
		{Label: "Authors", Value: humanize.Comma(int64(s.Authors)), Unit: "authors"},
		{Label: "Categories", Value: humanize.Comma(int64(s.Categories)), Unit: "categories"},
	}
}

// ChartTitle derives a card title from a chart file name:
// "top_10_revenue.png" becomes "Top 10 Revenue".
func ChartTitle(file string) string {
	name := strings.TrimSuffix(file, filepath.Ext(file))
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// ChartCards lists the PNG files in dir, sorted by name.
func ChartCards(dir string) ([]ChartCard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}

	var cards []ChartCard
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		cards = append(cards, ChartCard{Title: ChartTitle(e.Name()), File: e.Name()})
	}
	return cards, nil
}

// NewDashboard assembles the dashboard for the charts in dir.
func NewDashboard(title, dir string, s analysis.Summary, now time.Time) (Dashboard, error) {
	charts, err := ChartCards(dir)
	if err != nil {
		return Dashboard{}, err
	}

	subtitle := "No sales data"
	if s.Books > 0 {
		subtitle = fmt.Sprintf("Sales from %04d-%02d to %04d-%02d",
			s.FirstYear, s.FirstMonth, s.LastYear, s.LastMonth)
	}

	return Dashboard{
		Title:       title,
		Subtitle:    subtitle,
		Cards:       Cards(s),
		Charts:      charts,
		Version:     version.Short(),
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
	}, nil
}

// WriteDashboard renders d to path.
func WriteDashboard(path string, d Dashboard) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return dashboardTemplate.Execute(f, d)
}
