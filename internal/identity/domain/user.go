package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
)

// User is an account that can own meetings, propose slots and vote.
// The password hash never leaves the identity context.
type User struct {
	sharedDomain.BaseAggregateRoot
	email        Email
	passwordHash string
}

// NewUser registers a new account with an already hashed password.
func NewUser(email Email, passwordHash string, now time.Time) *User {
	u := &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		email:             email,
		passwordHash:      passwordHash,
	}
	u.AddDomainEvent(NewUserRegistered(u.ID(), email.String(), now))
	return u
}

// RehydrateUser recreates a user from persisted state.
func RehydrateUser(base sharedDomain.BaseAggregateRoot, email Email, passwordHash string) *User {
	return &User{
		BaseAggregateRoot: base,
		email:             email,
		passwordHash:      passwordHash,
	}
}

func (u *User) Email() Email         { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
