package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "listing_id", "availability_id", "created_at"})
}

func bookingWithSlotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "listing_id", "availability_id", "created_at", "start_time", "end_time", "listing_name"})
}

const claimSlotQuery = "UPDATE availabilities SET is_available = FALSE WHERE id = $1 AND is_available = TRUE"
const releaseSlotQuery = "UPDATE availabilities SET is_available = TRUE WHERE id = $1"

func TestCreateBookingClaimsSlot(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(claimSlotQuery)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings (user_id, listing_id, availability_id) VALUES ($1, $2, $3) RETURNING id, user_id, listing_id, availability_id, created_at")).
		WithArgs(7, 3, 5).
		WillReturnRows(bookingRows().AddRow(11, 7, 3, 5, now))
	mock.ExpectCommit()

	booking, err := repo.Create(ctx, 7, 3, 5)
	require.NoError(t, err)
	require.Equal(t, 11, booking.ID)
	require.Equal(t, 5, booking.AvailabilityID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingLosesRace(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(claimSlotQuery)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Create(ctx, 7, 3, 5)
	require.ErrorIs(t, err, ErrSlotUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleBooking(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(claimSlotQuery)).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET listing_id = $2, availability_id = $3 WHERE id = $1 AND availability_id = $4 RETURNING id, user_id, listing_id, availability_id, created_at")).
		WithArgs(11, 3, 6, 5).
		WillReturnRows(bookingRows().AddRow(11, 7, 3, 6, now))
	mock.ExpectExec(regexp.QuoteMeta(releaseSlotQuery)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := repo.Reschedule(ctx, 11, 3, 5, 6)
	require.NoError(t, err)
	require.Equal(t, 6, booking.AvailabilityID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleBookingLosesRaceKeepsOldSlot(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(claimSlotQuery)).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Reschedule(ctx, 11, 3, 5, 6)
	require.ErrorIs(t, err, ErrSlotUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleBookingMovedUnderneath(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	// The booking no longer points at slot 5, so the conditional update
	// matches nothing and the claim on slot 6 rolls back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(claimSlotQuery)).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET listing_id = $2, availability_id = $3 WHERE id = $1 AND availability_id = $4 RETURNING id, user_id, listing_id, availability_id, created_at")).
		WithArgs(11, 3, 6, 5).
		WillReturnRows(bookingRows())
	mock.ExpectRollback()

	_, err := repo.Reschedule(ctx, 11, 3, 5, 6)
	require.ErrorIs(t, err, ErrBookingChanged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookingReleasesSlot(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	// The delete reports which slot the booking held at delete time and
	// that slot is the one reopened.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1 RETURNING availability_id")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"availability_id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(releaseSlotQuery)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(ctx, 11))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookingNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1 RETURNING availability_id")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"availability_id"}))
	mock.ExpectRollback()

	err := repo.Delete(ctx, 99)
	require.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingByIDNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT").
		WithArgs(99).
		WillReturnRows(bookingWithSlotRows())

	_, err := repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestHoursBookedInMonth(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()
	monthStart := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(7, monthStart, monthEnd, 11).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8.5))

	hours, err := repo.HoursBookedInMonth(ctx, 7, monthStart, monthEnd, 11)
	require.NoError(t, err)
	require.InDelta(t, 8.5, hours, 0.001)
}
