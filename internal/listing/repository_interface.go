package listing

import "context"

type Repository interface {
	Create(ctx context.Context, name, address, category, description string, userID int, username string) (*Listing, error)
	GetByID(ctx context.Context, id int) (*Listing, error)
	Update(ctx context.Context, id int, name, address, category, description string) (*Listing, error)
	Delete(ctx context.Context, id int) error
	Search(ctx context.Context, filter SearchFilter) ([]Listing, error)
	ListByOwner(ctx context.Context, userID, limit int) ([]Listing, error)
	NameExists(ctx context.Context, name string) (bool, error)
}
