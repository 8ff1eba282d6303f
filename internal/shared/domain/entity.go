package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity represents a domain entity with identity.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	Equals(other Entity) bool
}

// BaseEntity carries the identity and creation instant shared by every record.
// Records are never soft-deleted, so there is no lifecycle state beyond these two.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
}

// NewBaseEntity creates a new entity with a generated ID created at the given instant.
func NewBaseEntity(createdAt time.Time) BaseEntity {
	return BaseEntity{
		id:        uuid.New(),
		createdAt: createdAt.UTC(),
	}
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id uuid.UUID, createdAt time.Time) BaseEntity {
	return BaseEntity{
		id:        id,
		createdAt: createdAt.UTC(),
	}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }

// Equals checks if two entities have the same identity.
func (e BaseEntity) Equals(other Entity) bool {
	if other == nil {
		return false
	}
	return e.id == other.ID()
}
