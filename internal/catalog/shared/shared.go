package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	internalShared "github.com/vinyldesk/vinyldesk/internal/shared"
)

// ListRequest is the body of a list operation. Filters combine with AND.
type ListRequest struct {
	Search   string                     `json:"search"`
	IsActive *bool                      `json:"isActive"`
	Options  internalShared.ListOptions `json:"options"`
}

// CountRequest is the body of a count operation.
type CountRequest struct {
	Search   string `json:"search"`
	IsActive *bool  `json:"isActive"`
}

// Paginator describes one page of results.
type Paginator struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPaginator computes page geometry from normalized options.
func NewPaginator(opts internalShared.ListOptions, total int) Paginator {
	pages := total / opts.Limit
	if total%opts.Limit != 0 {
		pages++
	}
	return Paginator{Page: opts.Page, Limit: opts.Limit, Total: total, Pages: pages}
}

// ListResponse is the envelope for list operations.
type ListResponse[T any] struct {
	Data      []T       `json:"data"`
	Paginator Paginator `json:"paginator"`
}

// CountResponse is the envelope for count operations.
type CountResponse struct {
	TotalRecords int `json:"totalRecords"`
}

// BulkResult reports how many rows a bulk write touched.
type BulkResult struct {
	Count int64 `json:"count"`
}

var stripMarks = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slugify normalizes a handle: diacritics stripped, lowercased, runs of
// non-alphanumeric characters collapsed to single hyphens.
func Slugify(s string) string {
	flat, _, err := transform.String(stripMarks, s)
	if err != nil {
		flat = s
	}
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(flat) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
