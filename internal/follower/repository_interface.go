package follower

import "context"

type Repository interface {
	Follow(ctx context.Context, influencerID, followerID int) (*Follower, error)
	Unfollow(ctx context.Context, influencerID, followerID int) error
	ListFollowers(ctx context.Context, influencerID int) ([]FollowerProfile, error)
	UserIDByUsername(ctx context.Context, username string) (int, error)
}
