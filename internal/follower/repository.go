package follower

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrUserNotFound     = errors.New("user not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Follow inserts the edge. The UNIQUE (influencer_id, follower_id) constraint
// catches duplicate follows, racing ones included.
func (r *repository) Follow(ctx context.Context, influencerID, followerID int) (*Follower, error) {
	query := `
		INSERT INTO followers (influencer_id, follower_id)
		VALUES ($1, $2)
		RETURNING id, influencer_id, follower_id, created_at
	`

	var edge Follower
	err := r.db.GetContext(ctx, &edge, query, influencerID, followerID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}

	return &edge, nil
}

func (r *repository) Unfollow(ctx context.Context, influencerID, followerID int) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM followers
		WHERE influencer_id = $1 AND follower_id = $2
	`, influencerID, followerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFollowing
	}

	return nil
}

func (r *repository) ListFollowers(ctx context.Context, influencerID int) ([]FollowerProfile, error) {
	query := `
		SELECT u.id AS user_id, u.username
		FROM followers f
		JOIN users u ON f.follower_id = u.id
		WHERE f.influencer_id = $1
		ORDER BY u.username ASC
	`

	profiles := []FollowerProfile{}
	err := r.db.SelectContext(ctx, &profiles, query, influencerID)
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *repository) UserIDByUsername(ctx context.Context, username string) (int, error) {
	var userID int
	err := r.db.GetContext(ctx, &userID, `SELECT id FROM users WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	return userID, nil
}
