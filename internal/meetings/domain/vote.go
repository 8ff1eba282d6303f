package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/google/uuid"
)

// Vote is one user's endorsement of a time slot. A user may vote for the
// same slot more than once.
type Vote struct {
	sharedDomain.BaseAggregateRoot
	voterID    uuid.UUID
	timeSlotID uuid.UUID
}

// CastVote creates a vote by voterID for slot.
func CastVote(voterID uuid.UUID, slot *TimeSlot, now time.Time) *Vote {
	vote := &Vote{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		voterID:           voterID,
		timeSlotID:        slot.ID(),
	}
	vote.AddDomainEvent(NewVoteCast(vote, slot.MeetingID(), now))
	return vote
}

// RehydrateVote recreates a vote from persisted state.
func RehydrateVote(id, voterID, timeSlotID uuid.UUID, createdAt time.Time) *Vote {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt)
	return &Vote{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		voterID:           voterID,
		timeSlotID:        timeSlotID,
	}
}

func (v *Vote) OwnerID() uuid.UUID    { return v.voterID }
func (v *Vote) VoterID() uuid.UUID    { return v.voterID }
func (v *Vote) TimeSlotID() uuid.UUID { return v.timeSlotID }

// Retract records the removal of the vote from a slot of meetingID.
func (v *Vote) Retract(meetingID uuid.UUID, now time.Time) {
	v.AddDomainEvent(NewVoteRetracted(v, meetingID, now))
}
