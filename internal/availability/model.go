package availability

import "time"

// Availability is a bookable time slot published under a listing. A slot is
// claimed by at most one booking at a time; is_available flips to FALSE when
// a booking holds it and back to TRUE when the booking releases it.
type Availability struct {
	ID          int       `db:"id" json:"availability_id"`
	ListingID   int       `db:"listing_id" json:"listing_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateAvailabilityRequest struct {
	ListingID int       `json:"listing_id" binding:"required,min=1"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type UpdateAvailabilityRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Duration of the slot in hours.
func (a *Availability) Hours() float64 {
	return a.EndTime.Sub(a.StartTime).Hours()
}
