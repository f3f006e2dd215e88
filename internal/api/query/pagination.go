package query

import (
	"math"
	"strconv"
	"strings"
)

// Default page sizes
const (
	DefaultPage        = 1
	DefaultListLimit   = 10
	DefaultSearchLimit = 20
	MaxLimit           = 100
)

// Page is a 1-indexed, offset-based slice of an ordered result set.
// Number and Limit are positive.
type Page struct {
	Number int
	Limit  int
}

// Offset returns how many records precede the page. It saturates at
// math.MaxInt, so a page far past the end stays past the end.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// Pagination describes a returned page relative to the whole result set
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes page metadata for total matching records
func NewPagination(p Page, total int64) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages,
		HasPrev:    p.Number > 1,
	}
}

// ParsePage clamps raw page/limit request values. Missing, non-numeric or
// non-positive values fall back to the defaults; limit is capped at maxLimit.
func ParsePage(rawPage, rawLimit string, defaultLimit, maxLimit int) Page {
	page := parsePositive(rawPage, DefaultPage)
	limit := parsePositive(rawLimit, defaultLimit)
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: page, Limit: limit}
}

// Window returns the [start, end) bounds of the page within n records
func (p Page) Window(n int) (int, int) {
	start := min(p.Offset(), n)
	if start < 0 {
		start = 0
	}
	end := n
	if p.Limit >= 0 && p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}

func parsePositive(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
