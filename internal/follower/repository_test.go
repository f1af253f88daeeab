package follower

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
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

func TestFollow(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO followers (influencer_id, follower_id) VALUES ($1, $2) RETURNING id, influencer_id, follower_id, created_at")).
		WithArgs(7, 8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "influencer_id", "follower_id", "created_at"}).AddRow(1, 7, 8, now))

	edge, err := repo.Follow(ctx, 7, 8)
	require.NoError(t, err)
	require.Equal(t, 7, edge.InfluencerID)
	require.Equal(t, 8, edge.FollowerID)
}

func TestFollowDuplicateEdge(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO followers (influencer_id, follower_id) VALUES ($1, $2) RETURNING id, influencer_id, follower_id, created_at")).
		WithArgs(7, 8).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Follow(ctx, 7, 8)
	require.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestUnfollowNotFollowing(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM followers WHERE influencer_id = $1 AND follower_id = $2")).
		WithArgs(7, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Unfollow(ctx, 7, 8)
	require.ErrorIs(t, err, ErrNotFollowing)
}

func TestListFollowers(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"user_id", "username"}).
		AddRow(8, "bob").
		AddRow(9, "carol")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT u.id AS user_id, u.username FROM followers f JOIN users u ON f.follower_id = u.id WHERE f.influencer_id = $1 ORDER BY u.username ASC")).
		WithArgs(7).
		WillReturnRows(rows)

	followers, err := repo.ListFollowers(ctx, 7)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	require.Equal(t, "bob", followers[0].Username)
}

func TestUserIDByUsernameNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE username = $1")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.UserIDByUsername(ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}
