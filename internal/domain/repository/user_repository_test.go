package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name  string
		total int
		p     Pagination
		want  int
	}{
		{name: "empty", total: 0, p: Pagination{Page: 1, Limit: 10}, want: 0},
		{name: "exact", total: 20, p: Pagination{Page: 1, Limit: 10}, want: 2},
		{name: "remainder", total: 15, p: Pagination{Page: 2, Limit: 10}, want: 2},
		{name: "single", total: 1, p: Pagination{Page: 1, Limit: 10}, want: 1},
		{name: "zero limit", total: 5, p: Pagination{Page: 1, Limit: 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(tt.total, tt.p)
			assert.Equal(t, tt.want, meta.TotalPages)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.p.Page, meta.Page)
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, Pagination{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 0, Pagination{Page: 0, Limit: 10}.Offset())
	assert.Equal(t, 0, Pagination{Page: 3, Limit: -5}.Offset())
}
