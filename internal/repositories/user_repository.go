package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByID(ctx context.Context, userID int) (models.User, error)
	UpdateProfile(ctx context.Context, userID int, displayName, bio, avatar string) error
	SearchUsers(ctx context.Context, query string, excludeUserID int, limit int) ([]models.UserSummary, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser registers a user; the display name defaults to the username.
func (r *UserRepo) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (username, password, display_name, bio, avatar) VALUES ($1, $2, $1, '', '') RETURNING id, username, password, display_name, bio, avatar`, username, passwordHash).
		StructScan(&user)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.User{}, ErrUsernameTaken
	}
	return user, err
}

// GetUserByUsername fetches a user by unique username.
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, password, display_name, bio, avatar FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByID fetches a user by id.
func (r *UserRepo) GetUserByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, password, display_name, bio, avatar FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile overwrites the mutable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, displayName, bio, avatar string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET display_name=$1, bio=$2, avatar=$3 WHERE id=$4`, displayName, bio, avatar, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SearchUsers matches usernames by substring, excluding the caller.
func (r *UserRepo) SearchUsers(ctx context.Context, query string, excludeUserID int, limit int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.SelectContext(ctx, &users, `SELECT id, username, display_name, avatar FROM users WHERE username LIKE '%' || $1 || '%' AND id <> $2 ORDER BY username ASC LIMIT $3`, query, excludeUserID, limit)
	return users, err
}
