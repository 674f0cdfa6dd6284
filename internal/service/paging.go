package service

import (
	"github.com/maxviazov/taskboard-service/internal/config"
	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/maxviazov/taskboard-service/internal/repository"
)

// Paging turns client page requests into repository windows and listing metadata.
type Paging struct {
	DefaultSize int
	MaxSize     int
	Siblings    int
	MaxSiblings int // 0 leaves ?siblings= unbounded
}

// NewPaging reads the limits from config, filling in anything left at zero.
func NewPaging(cfg config.PaginationConfig) Paging {
	p := Paging{
		DefaultSize: cfg.DefaultPageSize,
		MaxSize:     cfg.MaxPageSize,
		Siblings:    cfg.SiblingCount,
		MaxSiblings: cfg.MaxSiblingCount,
	}
	if p.DefaultSize <= 0 {
		p.DefaultSize = 5
	}
	if p.MaxSize < p.DefaultSize {
		p.MaxSize = max(p.DefaultSize, 100)
	}
	if p.Siblings < 0 {
		p.Siblings = pagination.DefaultSiblingCount
	}
	if p.MaxSiblings <= 0 || p.MaxSiblings < p.Siblings {
		p.MaxSiblings = max(p.Siblings, pagination.DefaultMaxSiblings)
	}
	return p
}

// normalize clamps a request: page < 1 is 1, a size < 1 takes the default and anything
// above the maximum is cut down to it. Siblings are capped the same way.
func (p Paging) normalize(r PageRequest) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	switch {
	case r.PageSize < 1:
		r.PageSize = p.DefaultSize
	case r.PageSize > p.MaxSize:
		r.PageSize = p.MaxSize
	}
	if r.Siblings < 0 {
		r.Siblings = p.Siblings
	}
	if p.MaxSiblings > 0 && r.Siblings > p.MaxSiblings {
		r.Siblings = p.MaxSiblings
	}
	return r
}

func (p Paging) window(r PageRequest) repository.Page {
	return repository.Page{Limit: r.PageSize, Offset: pagination.Offset(r.Page, r.PageSize)}
}

func listing[T any](r PageRequest, res repository.PageResult[T]) (Listing[T], error) {
	meta, err := pagination.NewMeta(r.Page, r.PageSize, res.Total, r.Siblings)
	if err != nil {
		return Listing[T]{}, err
	}
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return Listing[T]{Items: items, Pagination: meta}, nil
}
