package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists accounts. Finders return nil, nil when no row matches.
type UserRepository interface {
	// Create inserts a new account. A taken email surfaces as a unique violation.
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email Email) (*User, error)
	ExistsByEmail(ctx context.Context, email Email) (bool, error)
}
