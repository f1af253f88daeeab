package follower

import "time"

// Follower is a directed edge: FollowerID follows InfluencerID.
type Follower struct {
	ID           int       `db:"id" json:"follower_edge_id"`
	InfluencerID int       `db:"influencer_id" json:"influencer_id"`
	FollowerID   int       `db:"follower_id" json:"follower_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FollowerProfile is the public view of a follower returned by listings.
type FollowerProfile struct {
	UserID   int    `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
}

type FollowRequest struct {
	Username string `json:"username" binding:"required,min=1"`
}
