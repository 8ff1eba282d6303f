package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/google/uuid"
)

var ErrVoteWrongParent = errors.New("vote belongs to another time slot")

// TimeSlot is a candidate window proposed for a meeting. The proposer does
// not need to own the meeting.
type TimeSlot struct {
	sharedDomain.BaseAggregateRoot
	proposerID uuid.UUID
	meetingID  uuid.UUID
	start      time.Time
	end        time.Time
	votes      []*Vote
}

// NewTimeSlot proposes the window [start, end) for meetingID. The window
// must be admissible at now.
func NewTimeSlot(proposerID, meetingID uuid.UUID, start, end, now time.Time) (*TimeSlot, error) {
	start, end = start.UTC(), end.UTC()
	if err := CheckWindow(start, end, now); err != nil {
		return nil, err
	}

	slot := &TimeSlot{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		proposerID:        proposerID,
		meetingID:         meetingID,
		start:             start,
		end:               end,
	}
	slot.AddDomainEvent(NewTimeSlotProposed(slot, now))
	return slot, nil
}

// RehydrateTimeSlot recreates a time slot from persisted state.
func RehydrateTimeSlot(id, proposerID, meetingID uuid.UUID, start, end, createdAt time.Time) *TimeSlot {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt)
	return &TimeSlot{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		proposerID:        proposerID,
		meetingID:         meetingID,
		start:             start.UTC(),
		end:               end.UTC(),
	}
}

func (s *TimeSlot) OwnerID() uuid.UUID    { return s.proposerID }
func (s *TimeSlot) ProposerID() uuid.UUID { return s.proposerID }
func (s *TimeSlot) MeetingID() uuid.UUID  { return s.meetingID }
func (s *TimeSlot) Start() time.Time      { return s.start }
func (s *TimeSlot) End() time.Time        { return s.end }
func (s *TimeSlot) Votes() []*Vote        { return s.votes }

// Reschedule moves the window. Nil bounds keep their current value and the
// resulting window is checked for admissibility at now.
func (s *TimeSlot) Reschedule(start, end *time.Time, now time.Time) error {
	newStart, newEnd := s.start, s.end
	if start != nil {
		newStart = start.UTC()
	}
	if end != nil {
		newEnd = end.UTC()
	}
	if err := CheckWindow(newStart, newEnd, now); err != nil {
		return err
	}

	s.start, s.end = newStart, newEnd
	s.AddDomainEvent(NewTimeSlotUpdated(s, now))
	return nil
}

// Withdraw records the removal of the slot together with its votes.
func (s *TimeSlot) Withdraw(now time.Time) {
	s.AddDomainEvent(NewTimeSlotWithdrawn(s, now))
}

// AttachVotes sets the loaded votes of the slot.
func (s *TimeSlot) AttachVotes(votes []*Vote) error {
	for _, vote := range votes {
		if vote.TimeSlotID() != s.ID() {
			return ErrVoteWrongParent
		}
	}
	s.votes = votes
	return nil
}
