package rating

import "time"

type Rating struct {
	ID        int       `db:"id" json:"rating_id"`
	BookingID int       `db:"booking_id" json:"booking_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateRatingRequest struct {
	BookingID int    `json:"booking_id" binding:"required,min=1"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}
