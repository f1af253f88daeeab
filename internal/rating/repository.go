package rating

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/jmoiron/sqlx"
)

var ErrBookingNotFound = errors.New("booking not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, bookingID, userID, rating int, comment string) (*Rating, error) {
	query := `
		INSERT INTO ratings (booking_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, booking_id, user_id, rating, comment, created_at
	`

	var rat Rating
	err := r.db.GetContext(ctx, &rat, query, bookingID, userID, rating, comment)
	if err != nil {
		return nil, err
	}

	return &rat, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Rating, error) {
	query := `
		SELECT id, booking_id, user_id, rating, comment, created_at
		FROM ratings
		WHERE id = $1
	`

	var rat Rating
	err := r.db.GetContext(ctx, &rat, query, id)
	if err != nil {
		return nil, err
	}

	return &rat, nil
}

func (r *repository) ListByListing(ctx context.Context, listingID int) ([]Rating, error) {
	query := `
		SELECT r.id, r.booking_id, r.user_id, r.rating, r.comment, r.created_at
		FROM ratings r
		JOIN bookings b ON r.booking_id = b.id
		WHERE b.listing_id = $1
		ORDER BY r.created_at DESC
	`

	ratings := []Rating{}
	err := r.db.SelectContext(ctx, &ratings, query, listingID)
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

// AverageForListing computes the mean rating over every rating attached to a
// booking of the listing, rounded to 2 decimal places. A listing with no
// ratings averages to 0.0 rather than erroring.
func (r *repository) AverageForListing(ctx context.Context, listingID int) (float64, error) {
	query := `
		SELECT COALESCE(AVG(r.rating)::float8, 0)
		FROM ratings r
		JOIN bookings b ON r.booking_id = b.id
		WHERE b.listing_id = $1
	`

	var avg float64
	err := r.db.GetContext(ctx, &avg, query, listingID)
	if err != nil {
		return 0, err
	}

	return math.Round(avg*100) / 100, nil
}

func (r *repository) BookingOwner(ctx context.Context, bookingID int) (int, error) {
	query := `SELECT user_id FROM bookings WHERE id = $1`

	var userID int
	err := r.db.GetContext(ctx, &userID, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBookingNotFound
		}
		return 0, err
	}

	return userID, nil
}
