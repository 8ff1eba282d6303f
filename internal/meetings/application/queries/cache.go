package queries

import (
	"context"

	"github.com/google/uuid"
)

// MeetingCache stores rendered meeting views.
//
// Get returns a nil view on a miss, together with the meeting's current
// generation. Invalidate bumps the generation, and Set only stores a view
// while the generation it was given is still current, so a view loaded
// before a commit cannot land after that commit's invalidation.
type MeetingCache interface {
	Get(ctx context.Context, meetingID uuid.UUID) (*MeetingDTO, uint64, error)
	Set(ctx context.Context, meeting *MeetingDTO, generation uint64) error
	Invalidate(ctx context.Context, meetingID uuid.UUID) error
}

// NoopMeetingCache never holds anything.
type NoopMeetingCache struct{}

func (NoopMeetingCache) Get(context.Context, uuid.UUID) (*MeetingDTO, uint64, error) {
	return nil, 0, nil
}

func (NoopMeetingCache) Set(context.Context, *MeetingDTO, uint64) error { return nil }
func (NoopMeetingCache) Invalidate(context.Context, uuid.UUID) error    { return nil }
