package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ErrAuthorNotFound is returned when a write names an author id that does
// not resolve.
var ErrAuthorNotFound = errors.New("author not found")

// Book represents a book record. The author field carries the owning
// author's id on the wire, matching the flat foreign-key representation.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        int64     `json:"author"`
	AuthorName      string    `json:"author_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Query defines filters, search, ordering and pagination for listing books.
type Query struct {
	Title      string // case-insensitive substring on title
	AuthorName string // case-insensitive substring on the joined author name
	Year       *int   // exact publication year
	YearGTE    *int   // inclusive lower bound
	YearLTE    *int   // inclusive upper bound
	Search     string // free text over title and author name
	Ordering   string // title | publication_year | id, "-" prefix for descending
	Limit      int
	Offset     int
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Title           *string
	PublicationYear *int
	AuthorID        *int64
}
