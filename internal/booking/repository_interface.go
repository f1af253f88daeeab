package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID, listingID, availabilityID int) (*Booking, error)
	Reschedule(ctx context.Context, bookingID, listingID, oldAvailabilityID, newAvailabilityID int) (*Booking, error)
	Delete(ctx context.Context, bookingID int) error
	GetByID(ctx context.Context, id int) (*BookingWithSlot, error)
	ListByUser(ctx context.Context, userID int) ([]BookingWithSlot, error)
	ListByListing(ctx context.Context, listingID int) ([]BookingWithSlot, error)
	HoursBookedInMonth(ctx context.Context, userID int, monthStart, monthEnd time.Time, excludeBookingID int) (float64, error)
}
