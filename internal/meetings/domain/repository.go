package domain

import (
	"context"

	"github.com/google/uuid"
)

// Finders return nil, nil when no row matches. Repositories join the unit
// of work's transaction when one is present in ctx.

// MeetingRepository persists meetings. Deleting a meeting cascades to its
// time slots and their votes.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *Meeting) error
	Update(ctx context.Context, meeting *Meeting) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Meeting, error)
	// FindByOwner returns the meetings owned by ownerID, newest first.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Meeting, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Meeting, error)
}

// TimeSlotRepository persists time slots. Deleting a slot cascades to its votes.
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *TimeSlot) error
	Update(ctx context.Context, slot *TimeSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*TimeSlot, error)
	// FindByMeetingIDs returns the slots of the given meetings ordered by start.
	FindByMeetingIDs(ctx context.Context, meetingIDs []uuid.UUID) ([]*TimeSlot, error)
	FindByProposer(ctx context.Context, proposerID uuid.UUID) ([]*TimeSlot, error)
}

// VoteRepository persists votes.
type VoteRepository interface {
	Create(ctx context.Context, vote *Vote) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Vote, error)
	FindByTimeSlotIDs(ctx context.Context, timeSlotIDs []uuid.UUID) ([]*Vote, error)
	FindByVoter(ctx context.Context, voterID uuid.UUID) ([]*Vote, error)
}
