package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any page request can ask the remote API for.
	MaxSize = 100
)

// Params holds page-number pagination inputs. Pages are 1-based.
type Params struct {
	Page int
	Size int
}

// Normalize enforces the defaults and limits.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Query renders the params as the remote API's query string.
func (p Params) Query() url.Values {
	n := p.Normalize()
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(n.Page))
	q.Set("pageSize", strconv.Itoa(n.Size))
	return q
}

// Page is the remote list envelope {items,totalPagesCount,totalItemCount}.
type Page[T any] struct {
	Items           []T `json:"items"`
	TotalPagesCount int `json:"totalPagesCount"`
	TotalItemCount  int `json:"totalItemCount"`
}

// Map converts the items of a page while keeping the counters.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Items:           make([]U, 0, len(page.Items)),
		TotalPagesCount: page.TotalPagesCount,
		TotalItemCount:  page.TotalItemCount,
	}
	for _, item := range page.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
