package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

var (
	ErrTitleRequired       = errors.New("meeting title cannot be empty")
	ErrTitleTooLong        = errors.New("meeting title must be at most 100 characters")
	ErrDescriptionTooLong  = errors.New("meeting description must be at most 500 characters")
	ErrTimeSlotWrongParent = errors.New("time slot belongs to another meeting")
)

// Meeting is a scheduling proposal owned by one user. Its time slots are
// only populated when the meeting is loaded for reading.
type Meeting struct {
	sharedDomain.BaseAggregateRoot
	ownerID     uuid.UUID
	title       string
	description *string
	timeSlots   []*TimeSlot
}

// NewMeeting creates a new meeting owned by ownerID.
func NewMeeting(ownerID uuid.UUID, title string, description *string, now time.Time) (*Meeting, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	meeting := &Meeting{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		ownerID:           ownerID,
		title:             title,
		description:       description,
	}
	meeting.AddDomainEvent(NewMeetingCreated(meeting, now))
	return meeting, nil
}

// RehydrateMeeting recreates a meeting from persisted state.
func RehydrateMeeting(id, ownerID uuid.UUID, title string, description *string, createdAt time.Time) *Meeting {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt)
	return &Meeting{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		ownerID:           ownerID,
		title:             title,
		description:       description,
	}
}

func (m *Meeting) OwnerID() uuid.UUID     { return m.ownerID }
func (m *Meeting) Title() string          { return m.title }
func (m *Meeting) Description() *string   { return m.description }
func (m *Meeting) TimeSlots() []*TimeSlot { return m.timeSlots }

// Update applies the given fields. Nil fields are left unchanged.
func (m *Meeting) Update(title, description *string, now time.Time) error {
	newTitle := m.title
	if title != nil {
		normalized, err := normalizeTitle(*title)
		if err != nil {
			return err
		}
		newTitle = normalized
	}
	if err := validateDescription(description); err != nil {
		return err
	}

	m.title = newTitle
	if description != nil {
		m.description = description
	}
	m.AddDomainEvent(NewMeetingUpdated(m, now))
	return nil
}

// MarkDeleted records the deletion of the meeting and, by cascade, its slots and votes.
func (m *Meeting) MarkDeleted(now time.Time) {
	m.AddDomainEvent(NewMeetingDeleted(m, now))
}

// AttachTimeSlots sets the loaded time slots of the meeting.
func (m *Meeting) AttachTimeSlots(slots []*TimeSlot) error {
	for _, slot := range slots {
		if slot.MeetingID() != m.ID() {
			return ErrTimeSlotWrongParent
		}
	}
	m.timeSlots = slots
	return nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
