package commands

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/quorum/internal/identity/domain"
)

var (
	// ErrEmailTaken is joined with the conflict kind when registering an existing email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials is joined with the unauthorized kind on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// IssuedToken is a signed identity token handed back to the caller.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs identity tokens for a user id.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (IssuedToken, error)
}

// UserView is the public form of an account. It never carries the password hash.
type UserView struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  UserView
	Token IssuedToken
}

func viewOf(u *domain.User) UserView {
	return UserView{
		ID:        u.ID(),
		Email:     u.Email().String(),
		CreatedAt: u.CreatedAt(),
	}
}
