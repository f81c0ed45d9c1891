package shared

const (
	// Default pagination
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListOptions represents standard list page options shared by catalog and
// user listings.
type ListOptions struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	SortBy  string `json:"sortBy"`
	SortDir string `json:"sortDir"`
}

// Normalize clamps paging values into their allowed ranges.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.SortDir != SortAsc && o.SortDir != SortDesc {
		o.SortDir = SortAsc
	}
	return o
}

// Offset returns the SQL offset for the current page.
func (o ListOptions) Offset() int {
	offset := (o.Page - 1) * o.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
