package core

// MaxPageSize caps how many items a single page may return.
const MaxPageSize = 100

// Page is a 1-based pagination request. Out-of-range values are clamped
// rather than rejected: page < 1 becomes 1, size < 1 becomes the caller's
// default, size > MaxPageSize becomes MaxPageSize.
type Page struct {
	Number int `json:"pageNumber" query:"pageNumber"`
	Size   int `json:"pageSize" query:"pageSize"`
}

func (p *Page) Clamp(defaultSize int) {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Slice returns the bounds of this page over a collection of n items,
// for in-memory pagination.
func (p Page) Slice(n int) (lo, hi int) {
	lo = p.Offset()
	if lo > n {
		lo = n
	}
	hi = lo + p.Size
	if hi > n {
		hi = n
	}
	return lo, hi
}
