package models

import (
	"strings"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// QueryFilter is the set of optional predicates every backend honors
// identically. Zero values mean "no constraint"; the ALL sentinel on
// Level/Service is equivalent. From/To bounds are inclusive.
type QueryFilter struct {
	Search    string
	Level     string
	Service   string
	ProjectID string
	From      time.Time
	To        time.Time
	Page      int
	Size      int
}

// Normalize clamps pagination to page >= 1 and size in [1, MaxPageSize],
// defaulting size to DefaultPageSize when unset.
func (f *QueryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
}

// LevelFilter returns the upper-cased level predicate, if one applies.
func (f QueryFilter) LevelFilter() (string, bool) {
	lvl := strings.ToUpper(strings.TrimSpace(f.Level))
	if lvl == "" || lvl == LevelAll {
		return "", false
	}
	return lvl, true
}

// ServiceFilter returns the service predicate, if one applies. Unlike the
// level filter, the ALL sentinel is matched exactly.
func (f QueryFilter) ServiceFilter() (string, bool) {
	if f.Service == "" || f.Service == LevelAll {
		return "", false
	}
	return f.Service, true
}

// Offset is the number of records skipped before the requested page.
func (f QueryFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Size
}

// QueryResult is one page of matching records, newest timestamp first.
// Total counts all matches ignoring pagination.
type QueryResult struct {
	Logs       []LogRecord `json:"logs"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	TotalPages int         `json:"total_pages"`
}

// NewQueryResult assembles a result page, computing TotalPages as
// ceil(total/size).
func NewQueryResult(logs []LogRecord, total, page, size int) QueryResult {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	if logs == nil {
		logs = []LogRecord{}
	}
	return QueryResult{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}
}
