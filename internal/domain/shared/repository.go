package shared

// Filter carries the list-endpoint query options a repository translates
// into SQL: pagination, ordering, a free-text search term and the column
// filters the handler already whitelisted.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// Paginates reports whether the caller asked for a bounded page. A zero
// page or page size means the repository returns the full result set.
func (f Filter) Paginates() bool {
	return f.Page > 0 && f.PageSize > 0
}

// Offset converts the 1-based page number into a row offset.
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
