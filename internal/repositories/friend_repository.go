package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"chat-backend/internal/models"
)

var (
	ErrFriendRequestExists   = errors.New("friend request already exists")
	ErrFriendRequestNotFound = errors.New("friend request not found")
)

// FriendRepository abstracts friendship persistence.
type FriendRepository interface {
	CreateRequest(ctx context.Context, userID, friendID int) error
	AcceptRequest(ctx context.Context, requesterID, targetID int) error
	ListFriends(ctx context.Context, userID int) ([]models.UserSummary, error)
	AreFriends(ctx context.Context, userID, friendID int) (bool, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// CreateRequest records a pending request from userID to friendID. At most one
// row may exist per ordered pair.
func (r *FriendRepo) CreateRequest(ctx context.Context, userID, friendID int) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friends WHERE user_id=$1 AND friend_id=$2)`, userID, friendID); err != nil {
		return err
	}
	if exists {
		return ErrFriendRequestExists
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO friends (user_id, friend_id, status) VALUES ($1, $2, $3)`, userID, friendID, models.FriendPending)
	return err
}

// AcceptRequest flips the pending request from requesterID to targetID to
// accepted. The transition never reverses.
func (r *FriendRepo) AcceptRequest(ctx context.Context, requesterID, targetID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE friends SET status=$1 WHERE user_id=$2 AND friend_id=$3 AND status=$4`, models.FriendAccepted, requesterID, targetID, models.FriendPending)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrFriendRequestNotFound
	}
	return nil
}

// ListFriends returns the accepted friends of a user with profile fields.
func (r *FriendRepo) ListFriends(ctx context.Context, userID int) ([]models.UserSummary, error) {
	var friends []models.UserSummary
	err := r.db.SelectContext(ctx, &friends, `SELECT u.id, u.username, u.display_name, u.avatar FROM users u
        INNER JOIN friends f ON u.id = f.friend_id
        WHERE f.user_id=$1 AND f.status=$2
        ORDER BY u.username ASC`, userID, models.FriendAccepted)
	return friends, err
}

// AreFriends reports whether an accepted friendship row exists in either
// direction between the two users.
func (r *FriendRepo) AreFriends(ctx context.Context, userID, friendID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friends WHERE status=$3 AND ((user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)))`, userID, friendID, models.FriendAccepted)
	return exists, err
}
