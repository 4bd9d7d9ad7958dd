package mart

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "Tô Hoài", "Tô Hoài"},
		{"int", int32(42), "42"},
		{"float", 4.567, "4.57"},
		{"date", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "2025-03-01"},
		{"timestamp", time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), "2025-03-01 09:30:00"},
		{"numeric", pgtype.Numeric{Int: big.NewInt(4550), Exp: -2, Valid: true}, "45.50"},
		{"null numeric", pgtype.Numeric{}, "NULL"},
		{"bool", true, "true"},
		{"uuid", [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 1, 2, 3, 4, 5, 6, 7, 8},
			"12345678-9abc-def0-0102-030405060708"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestSalesRowRating(t *testing.T) {
	r := SalesRow{}
	assert.Zero(t, r.Rating())

	rating := 4.2
	r.AvgRating = &rating
	assert.Equal(t, 4.2, r.Rating())
}
