package util

// Page is the pagination envelope returned by every listing and report
// endpoint.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// TotalPages computes ceil(total/perPage), never less than 1 so an empty
// result still renders as page 1 of 1.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage normalizes a requested page into [1, pages].
func ClampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// NewPage assembles an envelope around an already-fetched slice of items.
// The caller is expected to have clamped page before fetching.
func NewPage[T any](items []T, page, perPage, total int) Page[T] {
	pages := TotalPages(total, perPage)
	page = ClampPage(page, pages)
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}

// PaginateSlice pages over materialized rows, used by reports that
// aggregate first and slice after.
func PaginateSlice[T any](items []T, page, perPage int) Page[T] {
	total := len(items)
	pages := TotalPages(total, perPage)
	page = ClampPage(page, pages)

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return NewPage(items[start:end], page, perPage, total)
}
