package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any paginated query can request.
	MaxLimit = 100
)

// Params holds limit/offset inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps the inputs to the supported ranges.
func Normalize(limit, offset int) Params {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// Page is the pagination envelope attached to list responses.
type Page struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// BuildPage derives the envelope from a total row count and the
// normalized query window.
func BuildPage(total int64, p Params) Page {
	page := p.Offset/p.Limit + 1
	return Page{
		Total:   total,
		Page:    page,
		PerPage: p.Limit,
		HasNext: int64(p.Offset+p.Limit) < total,
		HasPrev: p.Offset > 0,
	}
}
