// Package pagination parses the count/limit query parameters used by list
// endpoints. count is the 1-based page number.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Params struct {
	Count int
	Limit int
}

// FromRequest reads count and limit. Missing, malformed or non-positive values
// fall back to the first page of DefaultLimit items.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	p := Params{Count: 1, Limit: DefaultLimit}
	if v, err := strconv.Atoi(q.Get("count")); err == nil && v > 0 {
		p.Count = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) Offset() int {
	return (p.Count - 1) * p.Limit
}

// Window returns the bounds of limit items starting at offset in a list of n
// items, clamped to [0, n].
func Window(n, limit, offset int) (begin, end int) {
	begin = min(max(offset, 0), n)
	end = min(begin+max(limit, 0), n)
	return begin, end
}
