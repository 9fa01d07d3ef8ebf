package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chat-backend/internal/models"
	"chat-backend/internal/repositories"
)

var ErrUnknownSubject = errors.New("token subject is not a known user")

// Verifier resolves bearer tokens to user identities. The same instance backs
// the HTTP middleware and the websocket handshake so both paths validate
// credentials identically.
type Verifier struct {
	secret []byte
	ttl    time.Duration
	users  repositories.UserRepository
}

// NewVerifier constructs a Verifier.
func NewVerifier(secret []byte, ttl time.Duration, users repositories.UserRepository) *Verifier {
	return &Verifier{secret: secret, ttl: ttl, users: users}
}

// Verify validates the token and resolves its subject to a user. Aside from
// the persistence read it is side-effect free.
func (v *Verifier) Verify(ctx context.Context, token string) (models.User, error) {
	username, err := SubjectFromToken(token, v.secret)
	if err != nil {
		return models.User{}, err
	}
	user, err := v.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, ErrUnknownSubject
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Issue mints a token for the user with the verifier's configured lifetime.
func (v *Verifier) Issue(username string) (string, error) {
	return GenerateToken(username, v.secret, v.ttl)
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
