package models

import "strings"

// List query defaults shared by every resource.
const (
	DefaultOrderBy  = "created_at"
	DefaultOrderDir = "asc"
	DefaultLimit    = 100
	DefaultOffset   = 0
	MaxLimit        = 500
)

// ListQuery is the filter/sort/paginate contract consumed by every list
// endpoint. Filters holds exact-match column filters; Search is compared
// case-insensitively against the entity's searchable whitelist. Unknown
// filter keys are dropped at the handler, never rejected.
type ListQuery struct {
	Filters  map[string]string
	Search   string
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
}

// Normalize applies defaults and clamps paging bounds.
func (q *ListQuery) Normalize() {
	if q.OrderBy == "" {
		q.OrderBy = DefaultOrderBy
	}
	dir := strings.ToLower(q.OrderDir)
	if dir != "asc" && dir != "desc" {
		dir = DefaultOrderDir
	}
	q.OrderDir = dir
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = DefaultOffset
	}
}
