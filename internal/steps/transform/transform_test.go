package transform

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
)

func phaseNames(phases []Phase) []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.Name
	}
	return names
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		viewsExist bool
		want       []string
	}{
		{
			name: "rebuild",
			mode: config.TransformRebuild,
			want: []string{"derive_dates", "fact_indexes", "build_book_sales_mart", "build_top_10_monthly"},
		},
		{
			name:       "rebuild ignores existing views",
			mode:       config.TransformRebuild,
			viewsExist: true,
			want:       []string{"derive_dates", "fact_indexes", "build_book_sales_mart", "build_top_10_monthly"},
		},
		{
			name:       "refresh",
			mode:       config.TransformRefresh,
			viewsExist: true,
			want:       []string{"derive_dates", "fact_indexes", "refresh_book_sales_mart", "refresh_top_10_monthly"},
		},
		{
			name: "refresh falls back to rebuild",
			mode: config.TransformRefresh,
			want: []string{"derive_dates", "fact_indexes", "build_book_sales_mart", "build_top_10_monthly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phaseNames(Plan(tt.mode, tt.viewsExist)))
		})
	}
}

func TestTopMonthlyDefinition(t *testing.T) {
	create := buildTopMonthlySQL[1]
	assert.Contains(t, create, "ROW_NUMBER() OVER")
	assert.Contains(t, create, "PARTITION BY d.collect_year, d.collect_month")
	assert.Contains(t, create, "DESC, p.product_id")
	assert.Contains(t, create, fmt.Sprintf("sales_rank <= %d", TopPerMonth))

	// The unique index is what allows a concurrent refresh.
	assert.True(t, strings.HasPrefix(buildTopMonthlySQL[2], "CREATE UNIQUE INDEX"))
	assert.Contains(t, refreshTopMonthlySQL, "CONCURRENTLY")
}

func TestSalesMartDefinition(t *testing.T) {
	create := buildSalesMartSQL[1]
	for _, col := range []string{"total_sold", "total_revenue", "avg_rating", "record_count"} {
		assert.Contains(t, create, "AS "+col)
	}
	assert.Contains(t, create, "WHERE COALESCE(f.sold_count_numeric, 0) > 0")
	assert.Contains(t, buildSalesMartSQL[2], "total_revenue DESC")
}

func TestDeriveDates(t *testing.T) {
	for _, col := range []string{"collect_date", "collect_year", "collect_month", "collect_day", "collect_hour"} {
		assert.Contains(t, deriveDatesSQL, col+" ")
	}
}
