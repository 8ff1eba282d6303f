package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
)

const (
	AggregateType = "User"

	RoutingKeyUserRegistered = "user.registered"
)

// UserRegistered is emitted when an account is created.
type UserRegistered struct {
	sharedDomain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// NewUserRegistered creates a UserRegistered event.
func NewUserRegistered(userID uuid.UUID, email string, at time.Time) *UserRegistered {
	return &UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyUserRegistered, at),
		UserID:    userID,
		Email:     email,
	}
}
