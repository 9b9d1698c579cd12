package author

import (
	"errors"
	"time"

	"libraryapi/internal/book"
)

// ErrNotFound is returned when an author is not found.
var ErrNotFound = errors.New("author not found")

// Author represents an author record with their books nested. BooksCount
// is only populated on the detail representation.
type Author struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Books      []book.Book `json:"books"`
	BooksCount *int        `json:"books_count,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Query defines search, ordering and pagination for listing authors.
type Query struct {
	Search   string // case-insensitive substring on name
	Ordering string // name | id, "-" prefix for descending
	Limit    int
	Offset   int
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Name *string
}
