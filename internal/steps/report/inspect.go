package report

import (
	"context"
	"fmt"
	"io"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/mart"
)

// DefaultRelation is inspected when no relation is named.
const DefaultRelation = "book_sales_mart"

// Inspection is the structure and first rows of a relation.
type Inspection struct {
	Relation string
	Rows     int64
	Columns  []mart.Column
	Sample   mart.Sample
}

// Inspect reads the columns, row count and up to limit sample rows.
func Inspect(ctx context.Context, database db.DB, relation string, limit int) (Inspection, error) {
	if relation == "" {
		relation = DefaultRelation
	}
	in := Inspection{Relation: relation}

	var err error
	if in.Columns, err = mart.Columns(ctx, database, relation); err != nil {
		return in, err
	}
	if in.Rows, err = db.CountRows(ctx, database, relation); err != nil {
		return in, err
	}
	if in.Sample, err = mart.SampleRows(ctx, database, relation, limit); err != nil {
		return in, err
	}
	return in, nil
}

// WriteInspection prints an inspection.
func WriteInspection(w io.Writer, in Inspection) {
	fmt.Fprintf(w, "Columns of %s\n", in.Relation)
	table := newTable(w, []string{"Column", "Type", "Nullable"})
	for _, c := range in.Columns {
		nullable := "YES"
		if c.NotNull {
			nullable = "NO"
		}
		table.Append([]string{c.Name, c.DataType, nullable})
	}
	table.Render()

	fmt.Fprintf(w, "\nSample rows (%d of %d)\n", len(in.Sample.Rows), in.Rows)
	if len(in.Sample.Rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table = newTable(w, in.Sample.Header)
	table.AppendBulk(in.Sample.Rows)
	table.Render()
}
