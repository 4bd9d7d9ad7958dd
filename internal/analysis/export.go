package analysis

import "github.com/pgEdge/pgedge-bookdw/internal/mart"

// ExportRow is a cleaned sales mart row for BI tools.
type ExportRow struct {
	Year            int     `csv:"collect_year"`
	Month           int     `csv:"collect_month"`
	Category        string  `csv:"category"`
	Title           string  `csv:"title"`
	AuthorName      string  `csv:"author_name"`
	TotalSold       int64   `csv:"total_sold"`
	TotalRevenue    float64 `csv:"total_revenue"`
	AvgRating       float64 `csv:"avg_rating"`
	RecordCount     int64   `csv:"record_count"`
	RevenueBillions float64 `csv:"revenue_billions"`
	PricePerBook    float64 `csv:"price_per_book"`
}

// TopBookRow is one entry of the top books extract.
type TopBookRow struct {
	Title        string  `csv:"title"`
	AuthorName   string  `csv:"author_name"`
	Category     string  `csv:"category"`
	TotalSold    int64   `csv:"total_sold"`
	TotalRevenue float64 `csv:"total_revenue"`
	AvgRating    float64 `csv:"avg_rating"`
	RecordCount  int64   `csv:"record_count"`
}

// Clean fills missing categories and authors with placeholders and adds
// the derived revenue columns.
func Clean(rows []mart.SalesRow) []ExportRow {
	out := make([]ExportRow, len(rows))
	for i, r := range rows {
		out[i] = ExportRow{
			Year:            r.Year,
			Month:           r.Month,
			Category:        categoryLabel(r),
			Title:           r.Title,
			AuthorName:      authorLabel(r),
			TotalSold:       r.TotalSold,
			TotalRevenue:    r.TotalRevenue,
			AvgRating:       r.Rating(),
			RecordCount:     r.RecordCount,
			RevenueBillions: r.TotalRevenue / 1e9,
		}
		if r.TotalSold > 0 {
			out[i].PricePerBook = r.TotalRevenue / float64(r.TotalSold)
		}
	}
	return out
}

// TopBooks returns the n best selling rows in export form.
func TopBooks(rows []mart.SalesRow, n int) []TopBookRow {
	top := TopBySold(rows, n)
	out := make([]TopBookRow, len(top))
	for i, r := range top {
		out[i] = TopBookRow{
			Title:        r.Title,
			AuthorName:   authorLabel(r),
			Category:     categoryLabel(r),
			TotalSold:    r.TotalSold,
			TotalRevenue: r.TotalRevenue,
			AvgRating:    r.Rating(),
			RecordCount:  r.RecordCount,
		}
	}
	return out
}

func categoryLabel(r mart.SalesRow) string {
	if r.Category == nil || *r.Category == "" {
		return UncategorizedLabel
	}
	return *r.Category
}

func authorLabel(r mart.SalesRow) string {
	if r.AuthorName == "" {
		return UnknownAuthorLabel
	}
	return r.AuthorName
}
