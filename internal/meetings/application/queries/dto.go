package queries

import (
	"time"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	"github.com/google/uuid"
)

// MeetingDTO is a meeting with its slots and their votes.
type MeetingDTO struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
	TimeSlots   []TimeSlotDTO `json:"timeslots"`
}

// TimeSlotDTO is a proposed slot with its votes.
type TimeSlotDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MeetingID uuid.UUID `json:"meeting_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	Votes     []VoteDTO `json:"votes"`
}

// VoteDTO is a single vote.
type VoteDTO struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TimeSlotID uuid.UUID `json:"timeslot_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMeetingDTO converts a meeting with its loaded schedule.
func NewMeetingDTO(m *domain.Meeting) MeetingDTO {
	slots := make([]TimeSlotDTO, 0, len(m.TimeSlots()))
	for _, slot := range m.TimeSlots() {
		slots = append(slots, NewTimeSlotDTO(slot))
	}
	return MeetingDTO{
		ID:          m.ID(),
		UserID:      m.OwnerID(),
		Title:       m.Title(),
		Description: m.Description(),
		CreatedAt:   m.CreatedAt(),
		TimeSlots:   slots,
	}
}

// NewTimeSlotDTO converts a slot with its loaded votes.
func NewTimeSlotDTO(s *domain.TimeSlot) TimeSlotDTO {
	votes := make([]VoteDTO, 0, len(s.Votes()))
	for _, vote := range s.Votes() {
		votes = append(votes, NewVoteDTO(vote))
	}
	return TimeSlotDTO{
		ID:        s.ID(),
		UserID:    s.ProposerID(),
		MeetingID: s.MeetingID(),
		StartTime: s.Start(),
		EndTime:   s.End(),
		CreatedAt: s.CreatedAt(),
		Votes:     votes,
	}
}

// NewVoteDTO converts a vote.
func NewVoteDTO(v *domain.Vote) VoteDTO {
	return VoteDTO{
		ID:         v.ID(),
		UserID:     v.VoterID(),
		TimeSlotID: v.TimeSlotID(),
		CreatedAt:  v.CreatedAt(),
	}
}

func newMeetingDTOs(meetings []*domain.Meeting) []MeetingDTO {
	dtos := make([]MeetingDTO, 0, len(meetings))
	for _, meeting := range meetings {
		dtos = append(dtos, NewMeetingDTO(meeting))
	}
	return dtos
}
