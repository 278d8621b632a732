package ports

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	// MaxPageNumber keeps Number*Size well inside the SQL offset range.
	MaxPageNumber = 1_000_000
)

// PageQuery carries 0-based paging and sorting parameters. SortBy is one of
// the whitelisted field names of the resource being listed.
type PageQuery struct {
	Number    int
	Size      int
	SortBy    string
	SortOrder string
}

// Page is one slice of a sorted listing.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	LastPage      bool
}

// NewPage fills in the derived paging fields.
func NewPage[T any](content []T, q PageQuery, total int64) Page[T] {
	totalPages := 0
	if q.Size > 0 {
		totalPages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Number:        q.Number,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		LastPage:      q.Number+1 >= totalPages,
	}
}
