package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps the page to >= 1 and the size to (0, max].
func (p Pagination) Normalize(defaultSize int) Pagination {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}

	if p.Page < 1 {
		p.Page = 1
	}

	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}

	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}

	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type TaskFilter struct {
	UserID int
	Search string
	Pagination
}

type Page[T any] struct {
	Items []T
	Count int
	Pagination
}

func (p Page[T]) HasNext() bool {
	return p.Page*p.PageSize < p.Count
}

func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// OutOfRange reports a page number past the last page. The first page is
// always valid, even when empty.
func (p Page[T]) OutOfRange() bool {
	return p.Page > 1 && p.Offset() >= p.Count
}
