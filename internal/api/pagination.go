package api

import (
	"net/http"
	"strconv"
)

// History listings default to a dashboard-sized page. per_page is capped
// well below an export-sized request; full dumps go through the export
// endpoint instead.
const (
	defaultPage    = 1
	defaultPerPage = 50
	maxPerPage     = 200
)

// PaginationParams is the parsed page/per_page pair for the alert
// history listing.
type PaginationParams struct {
	Page    int
	PerPage int
}

// ParsePagination reads page and per_page from the query string. Absent
// or malformed values fall back to the defaults rather than erroring;
// office dashboards poll these endpoints unattended.
func ParsePagination(r *http.Request) PaginationParams {
	return PaginationParams{
		Page:    queryInt(r, "page", defaultPage, 0),
		PerPage: queryInt(r, "per_page", defaultPerPage, maxPerPage),
	}
}

// queryInt parses a positive integer query value, clamping to max when
// max is non-zero.
func queryInt(r *http.Request, key string, fallback, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// Offset converts the page number to a row offset for the store query.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages reports how many pages a listing of total rows spans.
func (p PaginationParams) TotalPages(total int64) int {
	if p.PerPage <= 0 {
		return 0
	}
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage > 0 {
		pages++
	}
	return pages
}
