package booking

import "time"

// Booking ties a user to exactly one availability slot. The slot's
// is_available flag and the booking row move together inside a transaction,
// so a slot is never double-booked and never left flagged without a holder.
type Booking struct {
	ID             int       `db:"id" json:"booking_id"`
	UserID         int       `db:"user_id" json:"user_id"`
	ListingID      int       `db:"listing_id" json:"listing_id"`
	AvailabilityID int       `db:"availability_id" json:"availability_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// BookingWithSlot joins a booking to its slot window and listing name for
// responses and notice/cap arithmetic.
type BookingWithSlot struct {
	Booking
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	ListingName string    `db:"listing_name" json:"listing_name"`
}

// Hours is the duration of the booked slot in hours.
func (b *BookingWithSlot) Hours() float64 {
	return b.EndTime.Sub(b.StartTime).Hours()
}

type CreateBookingRequest struct {
	UserID         int `json:"user_id" binding:"required,min=1"`
	ListingID      int `json:"listing_id" binding:"required,min=1"`
	AvailabilityID int `json:"availability_id" binding:"required,min=1"`
}

type RescheduleBookingRequest struct {
	AvailabilityID int `json:"availability_id" binding:"required,min=1"`
}
