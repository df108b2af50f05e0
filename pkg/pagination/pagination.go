package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 100
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 500
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps both fields into their valid ranges.
func (p Params) Normalize() Params {
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// FromQuery reads `limit` and `skip` from query values. Unparseable values
// fall back to the defaults.
func FromQuery(values url.Values) Params {
	return Params{
		Limit:  atoi(values.Get("limit")),
		Offset: atoi(values.Get("skip")),
	}.Normalize()
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
