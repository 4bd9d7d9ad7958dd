package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

func TestPhasesOrder(t *testing.T) {
	phases := Phases()
	require.Len(t, phases, 8)

	assert.Equal(t, "ensure_date_columns", phases[0].Name)
	assert.Empty(t, phases[0].Target)
	assert.Equal(t, "fact_book_sales", phases[len(phases)-1].Target, "facts must load last")

	seen := make(map[string]bool)
	for _, p := range phases {
		assert.NotEmpty(t, p.SQL, p.Name)
		assert.False(t, seen[p.Name], "duplicate phase %s", p.Name)
		seen[p.Name] = true
	}
}

func TestPhasesAreIdempotent(t *testing.T) {
	for _, p := range Phases() {
		if p.Target == "" {
			assert.Contains(t, p.SQL, "IF NOT EXISTS", p.Name)
			continue
		}
		assert.Contains(t, p.SQL, "ON CONFLICT", p.Name)
		assert.Contains(t, p.SQL, "DO NOTHING", p.Name)
	}
}

func TestDimensionNamesAreTrimmed(t *testing.T) {
	tests := []struct {
		sql    string
		column string
	}{
		{insertAuthorsSQL, "author"},
		{insertPublishersSQL, "publisher"},
		{insertSuppliersSQL, "supplier"},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Contains(t, tt.sql, "SELECT DISTINCT TRIM("+tt.column+")")
			assert.Contains(t, tt.sql, tt.column+" IS NOT NULL")
			assert.Contains(t, insertFactsSQL, "TRIM(sb."+tt.column+")")
		})
	}
}

func TestFactJoinsEveryDimension(t *testing.T) {
	for _, table := range []string{"dim_product", "dim_author", "dim_publisher", "dim_supplier", "dim_category", "dim_date"} {
		assert.Contains(t, insertFactsSQL, "LEFT JOIN "+table, table)
	}
	// Nullable natural-key columns are compared through COALESCE.
	assert.Equal(t, 5, strings.Count(insertFactsSQL, "COALESCE(p."))
	assert.Equal(t, 2, strings.Count(insertFactsSQL, "COALESCE(c."))
}

func TestStatsTotals(t *testing.T) {
	stats := Stats{Inserted: map[string]int64{
		"dim_author":      2,
		"dim_product":     3,
		"fact_book_sales": 10,
	}}
	assert.Equal(t, int64(10), stats.Facts())
	assert.Equal(t, int64(15), stats.Total())
	assert.Zero(t, Stats{}.Facts())
}

func TestStepRegistered(t *testing.T) {
	step, err := pipeline.Get(StepName)
	require.NoError(t, err)
	assert.Equal(t, StepName, step.Name())
	assert.NotEmpty(t, step.Description())
}
