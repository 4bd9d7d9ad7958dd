package mart

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// FormatValue renders a value returned by pgx for console output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case float64:
		return fmt.Sprintf("%.2f", x)
	case float32:
		return fmt.Sprintf("%.2f", x)
	case pgtype.Numeric:
		if !x.Valid {
			return "NULL"
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return "NaN"
		}
		return fmt.Sprintf("%.2f", f.Float64)
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16])
	default:
		return fmt.Sprint(x)
	}
}
