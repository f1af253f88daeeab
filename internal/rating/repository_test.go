package rating

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

const avgQuery = "SELECT COALESCE(AVG(r.rating)::float8, 0) FROM ratings r JOIN bookings b ON r.booking_id = b.id WHERE b.listing_id = $1"

func TestCreateRating(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ratings (booking_id, user_id, rating, comment) VALUES ($1, $2, $3, $4) RETURNING id, booking_id, user_id, rating, comment, created_at")).
		WithArgs(11, 7, 5, "great court").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "user_id", "rating", "comment", "created_at"}).
			AddRow(1, 11, 7, 5, "great court", now))

	rat, err := repo.Create(ctx, 11, 7, 5, "great court")
	require.NoError(t, err)
	require.Equal(t, 5, rat.Rating)
	require.Equal(t, 11, rat.BookingID)
}

func TestAverageForListing(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	// Ratings [3, 4, 5] average to 4.0.
	mock.ExpectQuery(regexp.QuoteMeta(avgQuery)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4.0))

	avg, err := repo.AverageForListing(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 4.0, avg)
}

func TestAverageForListingRoundsToTwoDecimals(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(avgQuery)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3.6666666666))

	avg, err := repo.AverageForListing(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 3.67, avg)
}

func TestAverageForListingNoRatings(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(avgQuery)).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	avg, err := repo.AverageForListing(ctx, 99)
	require.NoError(t, err)
	require.Equal(t, 0.0, avg)
}

func TestBookingOwnerNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM bookings WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := repo.BookingOwner(ctx, 99)
	require.ErrorIs(t, err, ErrBookingNotFound)
}
