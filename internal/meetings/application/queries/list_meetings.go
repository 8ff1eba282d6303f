package queries

import (
	"context"

	"github.com/felixgeelhaar/quorum/internal/meetings/application/services"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	"github.com/google/uuid"
)

// ListMeetingsQuery lists the meetings a user owns or takes part in.
type ListMeetingsQuery struct {
	UserID uuid.UUID
}

// ListMeetingsHandler handles the ListMeetingsQuery.
type ListMeetingsHandler struct {
	aggregator *services.Aggregator
}

// NewListMeetingsHandler creates a new ListMeetingsHandler.
func NewListMeetingsHandler(aggregator *services.Aggregator) *ListMeetingsHandler {
	return &ListMeetingsHandler{aggregator: aggregator}
}

// Handle executes the ListMeetingsQuery. No matches yield an empty list.
func (h *ListMeetingsHandler) Handle(ctx context.Context, query ListMeetingsQuery) ([]MeetingDTO, error) {
	meetings, err := h.aggregator.MeetingsForUser(ctx, query.UserID)
	if err != nil {
		return nil, sharedApplication.Unexpected("list meetings", err)
	}
	return newMeetingDTOs(meetings), nil
}

// ListOwnedMeetingsQuery lists the meetings a user owns.
type ListOwnedMeetingsQuery struct {
	OwnerID uuid.UUID
}

// ListOwnedMeetingsHandler handles the ListOwnedMeetingsQuery.
type ListOwnedMeetingsHandler struct {
	aggregator *services.Aggregator
}

// NewListOwnedMeetingsHandler creates a new ListOwnedMeetingsHandler.
func NewListOwnedMeetingsHandler(aggregator *services.Aggregator) *ListOwnedMeetingsHandler {
	return &ListOwnedMeetingsHandler{aggregator: aggregator}
}

// Handle executes the ListOwnedMeetingsQuery, newest first.
func (h *ListOwnedMeetingsHandler) Handle(ctx context.Context, query ListOwnedMeetingsQuery) ([]MeetingDTO, error) {
	meetings, err := h.aggregator.OwnedMeetings(ctx, query.OwnerID)
	if err != nil {
		return nil, sharedApplication.Unexpected("list owned meetings", err)
	}
	return newMeetingDTOs(meetings), nil
}
