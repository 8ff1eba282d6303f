package queries

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/quorum/internal/meetings/application/services"
	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	"github.com/google/uuid"
)

// ErrMeetingNotFound is returned when a meeting is not found.
var ErrMeetingNotFound = errors.New("meeting not found")

// GetMeetingQuery contains the parameters for getting a single meeting.
// Any authenticated user may read a meeting in order to vote on it.
type GetMeetingQuery struct {
	MeetingID uuid.UUID
}

// GetMeetingHandler handles the GetMeetingQuery.
type GetMeetingHandler struct {
	meetings   domain.MeetingRepository
	aggregator *services.Aggregator
	cache      MeetingCache
	logger     *slog.Logger
}

// NewGetMeetingHandler creates a new GetMeetingHandler.
func NewGetMeetingHandler(meetings domain.MeetingRepository, aggregator *services.Aggregator, cache MeetingCache, logger *slog.Logger) *GetMeetingHandler {
	if cache == nil {
		cache = NoopMeetingCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GetMeetingHandler{
		meetings:   meetings,
		aggregator: aggregator,
		cache:      cache,
		logger:     logger,
	}
}

// Handle executes the GetMeetingQuery, reading through the cache.
func (h *GetMeetingHandler) Handle(ctx context.Context, query GetMeetingQuery) (*MeetingDTO, error) {
	cached, generation, err := h.cache.Get(ctx, query.MeetingID)
	fill := err == nil
	if err != nil {
		h.logger.WarnContext(ctx, "meeting cache read failed", "meeting_id", query.MeetingID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	meeting, err := h.meetings.FindByID(ctx, query.MeetingID)
	if err != nil {
		return nil, sharedApplication.Unexpected("get meeting", err)
	}
	if meeting == nil {
		return nil, sharedApplication.Fail(sharedApplication.ErrNotFound, ErrMeetingNotFound)
	}
	if err := h.aggregator.LoadSchedules(ctx, []*domain.Meeting{meeting}); err != nil {
		return nil, sharedApplication.Unexpected("get meeting", err)
	}

	dto := NewMeetingDTO(meeting)
	if !fill {
		return &dto, nil
	}
	if err := h.cache.Set(ctx, &dto, generation); err != nil {
		h.logger.WarnContext(ctx, "meeting cache write failed", "meeting_id", query.MeetingID, "error", err)
	}
	return &dto, nil
}
