package store

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a limit/offset window over a list query.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit and offset query values. Missing, malformed or
// non-positive limits fall back to DefaultLimit; limits above MaxLimit are
// clamped; negative offsets become zero.
func ParsePage(limit, offset string) Page {
	p := Page{Limit: DefaultLimit}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if n, err := strconv.Atoi(offset); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}
