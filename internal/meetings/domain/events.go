package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	MeetingAggregateType  = "Meeting"
	TimeSlotAggregateType = "TimeSlot"
	VoteAggregateType     = "Vote"
)

const (
	RoutingKeyMeetingCreated    = "meeting.created"
	RoutingKeyMeetingUpdated    = "meeting.updated"
	RoutingKeyMeetingDeleted    = "meeting.deleted"
	RoutingKeyTimeSlotProposed  = "timeslot.proposed"
	RoutingKeyTimeSlotUpdated   = "timeslot.updated"
	RoutingKeyTimeSlotWithdrawn = "timeslot.withdrawn"
	RoutingKeyVoteCast          = "vote.cast"
	RoutingKeyVoteRetracted     = "vote.retracted"
)

// MeetingCreated is emitted when a meeting is created.
type MeetingCreated struct {
	sharedDomain.BaseEvent
	MeetingID uuid.UUID `json:"meeting_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
}

// NewMeetingCreated creates a MeetingCreated event.
func NewMeetingCreated(m *Meeting, at time.Time) *MeetingCreated {
	return &MeetingCreated{
		BaseEvent: sharedDomain.NewBaseEvent(m.ID(), MeetingAggregateType, RoutingKeyMeetingCreated, at),
		MeetingID: m.ID(),
		OwnerID:   m.OwnerID(),
		Title:     m.Title(),
	}
}

// MeetingUpdated is emitted when a meeting's title or description changes.
type MeetingUpdated struct {
	sharedDomain.BaseEvent
	MeetingID   uuid.UUID `json:"meeting_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
}

// NewMeetingUpdated creates a MeetingUpdated event.
func NewMeetingUpdated(m *Meeting, at time.Time) *MeetingUpdated {
	return &MeetingUpdated{
		BaseEvent:   sharedDomain.NewBaseEvent(m.ID(), MeetingAggregateType, RoutingKeyMeetingUpdated, at),
		MeetingID:   m.ID(),
		Title:       m.Title(),
		Description: m.Description(),
	}
}

// MeetingDeleted is emitted when a meeting and its slots are deleted.
type MeetingDeleted struct {
	sharedDomain.BaseEvent
	MeetingID uuid.UUID `json:"meeting_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
}

// NewMeetingDeleted creates a MeetingDeleted event.
func NewMeetingDeleted(m *Meeting, at time.Time) *MeetingDeleted {
	return &MeetingDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(m.ID(), MeetingAggregateType, RoutingKeyMeetingDeleted, at),
		MeetingID: m.ID(),
		OwnerID:   m.OwnerID(),
	}
}

// TimeSlotProposed is emitted when a slot is proposed for a meeting.
type TimeSlotProposed struct {
	sharedDomain.BaseEvent
	TimeSlotID uuid.UUID `json:"timeslot_id"`
	MeetingID  uuid.UUID `json:"meeting_id"`
	ProposerID uuid.UUID `json:"proposer_id"`
	Start      time.Time `json:"start_time"`
	End        time.Time `json:"end_time"`
}

// NewTimeSlotProposed creates a TimeSlotProposed event.
func NewTimeSlotProposed(s *TimeSlot, at time.Time) *TimeSlotProposed {
	return &TimeSlotProposed{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), TimeSlotAggregateType, RoutingKeyTimeSlotProposed, at),
		TimeSlotID: s.ID(),
		MeetingID:  s.MeetingID(),
		ProposerID: s.ProposerID(),
		Start:      s.Start(),
		End:        s.End(),
	}
}

// TimeSlotUpdated is emitted when a slot is rescheduled.
type TimeSlotUpdated struct {
	sharedDomain.BaseEvent
	TimeSlotID uuid.UUID `json:"timeslot_id"`
	MeetingID  uuid.UUID `json:"meeting_id"`
	Start      time.Time `json:"start_time"`
	End        time.Time `json:"end_time"`
}

// NewTimeSlotUpdated creates a TimeSlotUpdated event.
func NewTimeSlotUpdated(s *TimeSlot, at time.Time) *TimeSlotUpdated {
	return &TimeSlotUpdated{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), TimeSlotAggregateType, RoutingKeyTimeSlotUpdated, at),
		TimeSlotID: s.ID(),
		MeetingID:  s.MeetingID(),
		Start:      s.Start(),
		End:        s.End(),
	}
}

// TimeSlotWithdrawn is emitted when a slot and its votes are deleted.
type TimeSlotWithdrawn struct {
	sharedDomain.BaseEvent
	TimeSlotID uuid.UUID `json:"timeslot_id"`
	MeetingID  uuid.UUID `json:"meeting_id"`
}

// NewTimeSlotWithdrawn creates a TimeSlotWithdrawn event.
func NewTimeSlotWithdrawn(s *TimeSlot, at time.Time) *TimeSlotWithdrawn {
	return &TimeSlotWithdrawn{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), TimeSlotAggregateType, RoutingKeyTimeSlotWithdrawn, at),
		TimeSlotID: s.ID(),
		MeetingID:  s.MeetingID(),
	}
}

// VoteCast is emitted when a user votes for a slot.
type VoteCast struct {
	sharedDomain.BaseEvent
	VoteID     uuid.UUID `json:"vote_id"`
	VoterID    uuid.UUID `json:"voter_id"`
	TimeSlotID uuid.UUID `json:"timeslot_id"`
	MeetingID  uuid.UUID `json:"meeting_id"`
}

// NewVoteCast creates a VoteCast event.
func NewVoteCast(v *Vote, meetingID uuid.UUID, at time.Time) *VoteCast {
	return &VoteCast{
		BaseEvent:  sharedDomain.NewBaseEvent(v.ID(), VoteAggregateType, RoutingKeyVoteCast, at),
		VoteID:     v.ID(),
		VoterID:    v.VoterID(),
		TimeSlotID: v.TimeSlotID(),
		MeetingID:  meetingID,
	}
}

// VoteRetracted is emitted when a vote is deleted.
type VoteRetracted struct {
	sharedDomain.BaseEvent
	VoteID     uuid.UUID `json:"vote_id"`
	TimeSlotID uuid.UUID `json:"timeslot_id"`
	MeetingID  uuid.UUID `json:"meeting_id"`
}

// NewVoteRetracted creates a VoteRetracted event.
func NewVoteRetracted(v *Vote, meetingID uuid.UUID, at time.Time) *VoteRetracted {
	return &VoteRetracted{
		BaseEvent:  sharedDomain.NewBaseEvent(v.ID(), VoteAggregateType, RoutingKeyVoteRetracted, at),
		VoteID:     v.ID(),
		TimeSlotID: v.TimeSlotID(),
		MeetingID:  meetingID,
	}
}
