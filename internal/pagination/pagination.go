// Package pagination computes the compressed list of page markers a page-selector control
// renders: page numbers plus gap markers standing in for elided runs of pages.
// Everything here is pure; callers decide whether a result is worth memoizing.
package pagination

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSiblingCount is the number of pages shown on each side of the current page
// when the caller does not ask for something else.
const DefaultSiblingCount = 1

// fixedSlots covers first page, last page, current page and two gap slots.
const fixedSlots = 5

// minGapRun is the smallest run of hidden pages worth collapsing into a gap. A lone hidden
// page is printed instead, so page 4 of 10 renders "1 2 3 4 5 ... 10", not "1 ... 3 4 5 ... 10".
const minGapRun = 2

// ErrInvalidArgument is returned for inputs that are contract violations rather than
// transient UI state (currently only a non-positive page size).
var ErrInvalidArgument = errors.New("invalid argument")

// TotalPages returns ceil(totalCount / pageSize). A non-positive total yields 0.
func TotalPages(totalCount, pageSize int) (int, error) {
	if pageSize <= 0 {
		return 0, fmt.Errorf("%w: page size must be > 0, got %d", ErrInvalidArgument, pageSize)
	}
	if totalCount <= 0 {
		return 0, nil
	}
	return (totalCount-1)/pageSize + 1, nil
}

// Range returns the markers to render for currentPage out of totalCount items split into
// pages of pageSize, keeping siblingCount pages visible on each side of the current one.
//
// currentPage may be out of [1, totalPages]; the sibling window is clamped so the result
// never references a page that does not exist. A negative siblingCount means "unspecified"
// and falls back to DefaultSiblingCount.
func Range(currentPage, totalCount, pageSize, siblingCount int) ([]Entry, error) {
	totalPages, err := TotalPages(totalCount, pageSize)
	if err != nil {
		return nil, err
	}
	if siblingCount < 0 {
		siblingCount = DefaultSiblingCount
	}
	// Neither clamp changes the result; both keep the arithmetic below inside int range.
	siblingCount = min(siblingCount, totalPages/2)
	currentPage = min(max(currentPage, 0), totalPages)

	if totalPages-fixedSlots <= siblingCount*2 {
		return span(1, totalPages), nil
	}

	leftSibling := max(currentPage-siblingCount, 1)
	rightSibling := totalPages
	if currentPage < totalPages-siblingCount {
		rightSibling = currentPage + siblingCount
	}

	// Hidden runs are 2..leftSibling-1 and rightSibling+1..totalPages-1.
	showLeftGap := leftSibling-2 >= minGapRun
	showRightGap := totalPages-1-rightSibling >= minGapRun

	edgeBlock := siblingCount*2 + 3

	switch {
	case !showLeftGap && showRightGap:
		out := span(1, edgeBlock)
		return append(out, Gap, Entry(totalPages)), nil

	case showLeftGap && !showRightGap:
		out := []Entry{1, Gap}
		return append(out, span(totalPages-edgeBlock+1, totalPages)...), nil

	case showLeftGap && showRightGap:
		out := []Entry{1, Gap}
		out = append(out, span(leftSibling, rightSibling)...)
		return append(out, Gap, Entry(totalPages)), nil

	default:
		// Unreachable with the current block size; kept so a future change to the
		// threshold degrades to the full list instead of a malformed range.
		return span(1, totalPages), nil
	}
}

// Request bundles the calculator inputs, mostly for callers that carry them around
// together (HTTP query binding, memoization keys).
type Request struct {
	CurrentPage  int `json:"current_page" form:"page"`
	TotalCount   int `json:"total_count" form:"total"`
	PageSize     int `json:"page_size" form:"page_size"`
	SiblingCount int `json:"sibling_count" form:"siblings"`
}

// Range is the struct form of the package-level Range.
func (r Request) Range() ([]Entry, error) {
	return Range(r.CurrentPage, r.TotalCount, r.PageSize, r.SiblingCount)
}

// Offset returns the index of the first item on a 1-based page. It saturates at
// math.MaxInt instead of wrapping, so an absurd page lands past the end of any listing.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// span returns from..to inclusive; empty (never nil) when to < from.
func span(from, to int) []Entry {
	if to < from {
		return []Entry{}
	}
	n := to - from + 1
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Entry(from+i))
	}
	return out
}
