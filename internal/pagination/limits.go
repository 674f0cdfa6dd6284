package pagination

import "fmt"

const (
	DefaultMaxSiblings = 5
	DefaultMaxPages    = 1_000_000
)

// DefaultLimits applies where no configuration is available, e.g. the CLI.
var DefaultLimits = Limits{MaxSiblings: DefaultMaxSiblings, MaxPages: DefaultMaxPages}

// Limits bounds calculator inputs that come from untrusted callers. A range computed
// from a request that passes Check holds at most 2*MaxSiblings+5 entries.
type Limits struct {
	MaxSiblings int
	MaxPages    int
}

// orDefault swaps a zero Limits for DefaultLimits.
func (l Limits) orDefault() Limits {
	if l == (Limits{}) {
		return DefaultLimits
	}
	return l
}

// Check reports ErrInvalidArgument for a non-positive page size, a sibling count above
// MaxSiblings, or a current page or page count above MaxPages.
func (l Limits) Check(r Request) error {
	l = l.orDefault()
	totalPages, err := TotalPages(r.TotalCount, r.PageSize)
	if err != nil {
		return err
	}
	switch {
	case r.SiblingCount > l.MaxSiblings:
		return fmt.Errorf("%w: sibling count must be <= %d, got %d", ErrInvalidArgument, l.MaxSiblings, r.SiblingCount)
	case totalPages > l.MaxPages:
		return fmt.Errorf("%w: page count must be <= %d, got %d", ErrInvalidArgument, l.MaxPages, totalPages)
	case r.CurrentPage > l.MaxPages:
		return fmt.Errorf("%w: current page must be <= %d, got %d", ErrInvalidArgument, l.MaxPages, r.CurrentPage)
	}
	return nil
}

// RangeWithin checks r against l before computing its range. A zero l means DefaultLimits.
func (r Request) RangeWithin(l Limits) ([]Entry, error) {
	if err := l.Check(r); err != nil {
		return nil, err
	}
	return r.Range()
}
