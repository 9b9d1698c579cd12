package author

import (
	"context"
)

// Service provides author-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new author service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the authors matching the query plus the total match count.
func (s *Service) List(ctx context.Context, q Query) ([]Author, int, error) {
	return s.repo.List(ctx, q)
}

// GetByID returns an author with their books and book count.
func (s *Service) GetByID(ctx context.Context, id int64) (Author, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Author{}, err
	}
	count := len(a.Books)
	a.BooksCount = &count
	return a, nil
}

// Create stores a new author and fills in its generated fields.
func (s *Service) Create(ctx context.Context, a *Author) error {
	return s.repo.Create(ctx, a)
}

// Update applies a full or partial field replacement by id.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Author, error) {
	return s.repo.Update(ctx, id, p)
}

// Delete removes an author by id. Their books go with them.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
