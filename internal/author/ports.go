package author

import (
	"context"
)

// Repository defines the contract for author data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Author, int, error)
	GetByID(ctx context.Context, id int64) (Author, error)
	Create(ctx context.Context, a *Author) error
	Update(ctx context.Context, id int64, p Patch) (Author, error)
	Delete(ctx context.Context, id int64) error
}
