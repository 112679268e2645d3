package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryFilterNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       QueryFilter
		wantPage int
		wantSize int
	}{
		{"defaults", QueryFilter{}, 1, DefaultPageSize},
		{"negative page", QueryFilter{Page: -3, Size: 10}, 1, 10},
		{"zero size", QueryFilter{Page: 2}, 2, DefaultPageSize},
		{"size clamped", QueryFilter{Page: 1, Size: 5000}, 1, MaxPageSize},
		{"within bounds", QueryFilter{Page: 4, Size: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.in
			f.Normalize()
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantSize, f.Size)
		})
	}
}

func TestQueryFilterLevelFilter(t *testing.T) {
	f := QueryFilter{Level: "error"}
	lvl, ok := f.LevelFilter()
	assert.True(t, ok)
	assert.Equal(t, "ERROR", lvl)

	for _, sentinel := range []string{"", "ALL", "all"} {
		f := QueryFilter{Level: sentinel}
		_, ok := f.LevelFilter()
		assert.False(t, ok, "level %q should not filter", sentinel)
	}
}

func TestQueryFilterServiceFilter(t *testing.T) {
	f := QueryFilter{Service: "billing"}
	svc, ok := f.ServiceFilter()
	assert.True(t, ok)
	assert.Equal(t, "billing", svc)

	_, ok = QueryFilter{Service: "ALL"}.ServiceFilter()
	assert.False(t, ok)
	_, ok = QueryFilter{}.ServiceFilter()
	assert.False(t, ok)
}

func TestQueryFilterOffset(t *testing.T) {
	assert.Equal(t, 0, QueryFilter{Page: 1, Size: 50}.Offset())
	assert.Equal(t, 50, QueryFilter{Page: 2, Size: 50}.Offset())
	assert.Equal(t, 90, QueryFilter{Page: 10, Size: 10}.Offset())
}

func TestNewQueryResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		wantPages int
	}{
		{"exact division", 100, 50, 2},
		{"remainder rounds up", 101, 50, 3},
		{"empty", 0, 50, 0},
		{"single partial page", 7, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewQueryResult(nil, tt.total, 1, tt.size)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.NotNil(t, res.Logs)
		})
	}
}
