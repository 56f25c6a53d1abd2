package domain

import "time"

// Follow is a directed edge: follower sees the followed user's public
// activity. Unique per ordered pair, self-edges forbidden.
type Follow struct {
	CreatedAt   time.Time `json:"created_at"`
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
}

// Block is a directed edge from blocker to blocked. Unique per ordered
// pair, self-edges forbidden. While a block exists between two users (in
// either direction of creation), no follow edge may exist between them.
type Block struct {
	CreatedAt time.Time `json:"created_at"`
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
}
