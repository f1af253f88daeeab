package rating

import "context"

type Repository interface {
	Create(ctx context.Context, bookingID, userID, rating int, comment string) (*Rating, error)
	GetByID(ctx context.Context, id int) (*Rating, error)
	ListByListing(ctx context.Context, listingID int) ([]Rating, error)
	AverageForListing(ctx context.Context, listingID int) (float64, error)
	BookingOwner(ctx context.Context, bookingID int) (int, error)
}
