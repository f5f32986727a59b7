package auth

import (
	"context"
	"time"

	"github.com/redmonkez12/go-auth-service/internal/user"
)

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	// Issue returns a signed token for subject that expires after ttl.
	Issue(subject string, ttl time.Duration) (string, error)
	// Validate returns the token subject, or ErrExpiredToken,
	// ErrMalformedToken or ErrSignatureMismatch.
	Validate(token string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
}

// UserRepository is the persistence the service depends on.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id int64) (*user.User, error)
	Create(ctx context.Context, candidate *user.User) (*user.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}
