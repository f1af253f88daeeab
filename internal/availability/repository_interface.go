package availability

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, listingID int, startTime, endTime time.Time) (*Availability, error)
	GetByID(ctx context.Context, id int) (*Availability, error)
	ListByListing(ctx context.Context, listingID int, after time.Time) ([]Availability, error)
	Update(ctx context.Context, id int, startTime, endTime time.Time) (*Availability, error)
	Delete(ctx context.Context, id int) error
	ListingOwner(ctx context.Context, listingID int) (int, error)
}
