package models

// Friendship statuses. Acceptance only moves pending -> accepted.
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
)

// Friendship is an ordered (requester, target) pair with a status.
type Friendship struct {
	ID       int    `db:"id" json:"id"`
	UserID   int    `db:"user_id" json:"user_id"`
	FriendID int    `db:"friend_id" json:"friend_id"`
	Status   string `db:"status" json:"status"`
}
