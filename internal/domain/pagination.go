package domain

// PaginationParams holds offset-based pagination parameters for list queries.
// A zero PageSize means no limit.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Window returns the [lo, hi) bounds of the current page within total items.
func (p PaginationParams) Window(total int) (lo, hi int) {
	if p.PageSize < 1 {
		return 0, total
	}
	lo = min(p.Offset(), total)
	hi = min(lo+p.PageSize, total)
	return lo, hi
}
