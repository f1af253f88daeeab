package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrSlotUnavailable      = errors.New("slot is no longer available")
	ErrForbidden            = errors.New("booking belongs to another user")
	ErrTooCloseToStart      = errors.New("booking starts too soon to change")
	ErrBookingChanged       = errors.New("booking was changed by another request")
	ErrMonthlyCapExceeded   = errors.New("monthly booking cap exceeded")
	ErrBookingNotFound      = errors.New("booking not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// claimSlot flips the slot to booked only if it is still open. The conditional
// update is what makes two racing bookings resolve to exactly one winner: the
// loser's UPDATE matches zero rows and the whole transaction rolls back.
func claimSlot(ctx context.Context, tx *sqlx.Tx, availabilityID int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE availabilities
		SET is_available = FALSE
		WHERE id = $1 AND is_available = TRUE
	`, availabilityID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSlotUnavailable
	}

	return nil
}

func releaseSlot(ctx context.Context, tx *sqlx.Tx, availabilityID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE availabilities
		SET is_available = TRUE
		WHERE id = $1
	`, availabilityID)
	return err
}

// Create claims the slot and inserts the booking in one transaction. Either
// both writes land or neither does.
func (r *repository) Create(ctx context.Context, userID, listingID, availabilityID int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := claimSlot(ctx, tx, availabilityID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO bookings (user_id, listing_id, availability_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, listing_id, availability_id, created_at
	`

	var booking Booking
	if err := tx.GetContext(ctx, &booking, query, userID, listingID, availabilityID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

// Reschedule moves a booking onto a new slot: claim the new slot, repoint the
// booking, release the old slot, all in one transaction. A lost claim on the
// new slot leaves the old booking untouched. The booking update is conditional
// on the slot the caller saw, so a concurrent move or cancel of the same
// booking rolls back instead of releasing a stale slot.
func (r *repository) Reschedule(ctx context.Context, bookingID, listingID, oldAvailabilityID, newAvailabilityID int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := claimSlot(ctx, tx, newAvailabilityID); err != nil {
		return nil, err
	}

	query := `
		UPDATE bookings
		SET listing_id = $2, availability_id = $3
		WHERE id = $1 AND availability_id = $4
		RETURNING id, user_id, listing_id, availability_id, created_at
	`

	var booking Booking
	if err := tx.GetContext(ctx, &booking, query, bookingID, listingID, newAvailabilityID, oldAvailabilityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingChanged
		}
		return nil, err
	}

	if err := releaseSlot(ctx, tx, oldAvailabilityID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

// Delete removes the booking and reopens its slot in one transaction. The
// RETURNING clause reports the slot the delete actually freed, so a booking
// rescheduled between the caller's read and the delete still releases the
// right slot.
func (r *repository) Delete(ctx context.Context, bookingID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var availabilityID int
	err = tx.GetContext(ctx, &availabilityID, `DELETE FROM bookings WHERE id = $1 RETURNING availability_id`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}

	if err := releaseSlot(ctx, tx, availabilityID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id int) (*BookingWithSlot, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			b.listing_id,
			b.availability_id,
			b.created_at,
			a.start_time,
			a.end_time,
			l.name AS listing_name
		FROM bookings b
		JOIN availabilities a ON b.availability_id = a.id
		JOIN listings l ON b.listing_id = l.id
		WHERE b.id = $1
	`

	var booking BookingWithSlot
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]BookingWithSlot, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			b.listing_id,
			b.availability_id,
			b.created_at,
			a.start_time,
			a.end_time,
			l.name AS listing_name
		FROM bookings b
		JOIN availabilities a ON b.availability_id = a.id
		JOIN listings l ON b.listing_id = l.id
		WHERE b.user_id = $1
		ORDER BY a.start_time DESC
	`

	bookings := []BookingWithSlot{}
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByListing(ctx context.Context, listingID int) ([]BookingWithSlot, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			b.listing_id,
			b.availability_id,
			b.created_at,
			a.start_time,
			a.end_time,
			l.name AS listing_name
		FROM bookings b
		JOIN availabilities a ON b.availability_id = a.id
		JOIN listings l ON b.listing_id = l.id
		WHERE b.listing_id = $1
		ORDER BY a.start_time DESC
	`

	bookings := []BookingWithSlot{}
	err := r.db.SelectContext(ctx, &bookings, query, listingID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// HoursBookedInMonth sums the slot durations of the user's bookings whose
// slot starts inside [monthStart, monthEnd). The booking being rescheduled is
// excluded so its old hours do not count against its own move.
func (r *repository) HoursBookedInMonth(ctx context.Context, userID int, monthStart, monthEnd time.Time, excludeBookingID int) (float64, error) {
	query := `
		SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (a.end_time - a.start_time)) / 3600.0), 0)::float8
		FROM bookings b
		JOIN availabilities a ON b.availability_id = a.id
		WHERE b.user_id = $1
		  AND a.start_time >= $2
		  AND a.start_time < $3
		  AND b.id <> $4
	`

	var hours float64
	err := r.db.GetContext(ctx, &hours, query, userID, monthStart, monthEnd, excludeBookingID)
	if err != nil {
		return 0, err
	}

	return hours, nil
}
