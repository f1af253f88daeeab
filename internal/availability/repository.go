package availability

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrListingNotFound      = errors.New("listing not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, listingID int, startTime, endTime time.Time) (*Availability, error) {
	query := `
		INSERT INTO availabilities (listing_id, start_time, end_time, is_available)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, listing_id, start_time, end_time, is_available, created_at
	`

	var avail Availability
	err := r.db.GetContext(ctx, &avail, query, listingID, startTime, endTime)
	if err != nil {
		return nil, err
	}

	return &avail, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Availability, error) {
	query := `
		SELECT id, listing_id, start_time, end_time, is_available, created_at
		FROM availabilities
		WHERE id = $1
	`

	var avail Availability
	err := r.db.GetContext(ctx, &avail, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	return &avail, nil
}

// ListByListing returns the listing's slots that have not yet ended at the
// given cutoff, soonest first. A slot already in progress still shows up;
// pass time.Now() to hide only fully expired slots.
func (r *repository) ListByListing(ctx context.Context, listingID int, cutoff time.Time) ([]Availability, error) {
	query := `
		SELECT id, listing_id, start_time, end_time, is_available, created_at
		FROM availabilities
		WHERE listing_id = $1 AND end_time >= $2
		ORDER BY start_time ASC
	`

	avails := []Availability{}
	err := r.db.SelectContext(ctx, &avails, query, listingID, cutoff)
	if err != nil {
		return nil, err
	}

	return avails, nil
}

func (r *repository) Update(ctx context.Context, id int, startTime, endTime time.Time) (*Availability, error) {
	query := `
		UPDATE availabilities
		SET start_time = $2, end_time = $3
		WHERE id = $1
		RETURNING id, listing_id, start_time, end_time, is_available, created_at
	`

	var avail Availability
	err := r.db.GetContext(ctx, &avail, query, id, startTime, endTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	return &avail, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrAvailabilityNotFound
	}

	return nil
}

func (r *repository) ListingOwner(ctx context.Context, listingID int) (int, error) {
	query := `SELECT user_id FROM listings WHERE id = $1`

	var userID int
	err := r.db.GetContext(ctx, &userID, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrListingNotFound
		}
		return 0, err
	}

	return userID, nil
}
