package pagination

// Meta describes one page of a listing together with the range a client should render
// for its page selector.
type Meta struct {
	CurrentPage int     `json:"current_page"`
	PageSize    int     `json:"page_size"`
	TotalItems  int     `json:"total_items"`
	TotalPages  int     `json:"total_pages"`
	HasPrevious bool    `json:"has_previous"`
	HasNext     bool    `json:"has_next"`
	Pages       []Entry `json:"pages"`
}

// NewMeta builds listing metadata. Previous is unavailable on the first page and next on
// the last one; with no items both are false and Pages is empty.
func NewMeta(currentPage, pageSize, totalCount, siblingCount int) (Meta, error) {
	totalPages, err := TotalPages(totalCount, pageSize)
	if err != nil {
		return Meta{}, err
	}
	pages, err := Range(currentPage, totalCount, pageSize, siblingCount)
	if err != nil {
		return Meta{}, err
	}
	if totalCount < 0 {
		totalCount = 0
	}
	return Meta{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalItems:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: currentPage > 1 && totalPages > 0,
		HasNext:     currentPage < totalPages,
		Pages:       pages,
	}, nil
}

// Previous returns the page a "Previous" control navigates to, or false when disabled.
func (m Meta) Previous() (int, bool) {
	if !m.HasPrevious {
		return 0, false
	}
	return m.CurrentPage - 1, true
}

// Next returns the page a "Next" control navigates to, or false when disabled.
func (m Meta) Next() (int, bool) {
	if !m.HasNext {
		return 0, false
	}
	return m.CurrentPage + 1, true
}

// Visible reports whether a page selector is worth rendering at all: the caller treats
// page 0 as "not active yet" and a single page needs no selector.
func (m Meta) Visible() bool {
	return m.CurrentPage != 0 && len(m.Pages) >= 2
}
