package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"book_sales_mart", `"book_sales_mart"`},
		{"public.book_sales_mart", `"public"."book_sales_mart"`},
		{`odd"name`, `"odd""name"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelationIdentifier(tt.in), tt.in)
	}
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, int32(1), cfg.MinConns)
}
