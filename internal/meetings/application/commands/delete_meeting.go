package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quorum/pkg/clock"
	"github.com/google/uuid"
)

// DeleteMeetingCommand identifies the meeting to delete.
type DeleteMeetingCommand struct {
	CallerID  uuid.UUID
	MeetingID uuid.UUID
}

// DeleteMeetingHandler handles the DeleteMeetingCommand.
type DeleteMeetingHandler struct {
	meetings   domain.MeetingRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewDeleteMeetingHandler creates a new DeleteMeetingHandler.
func NewDeleteMeetingHandler(
	meetings domain.MeetingRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *DeleteMeetingHandler {
	return &DeleteMeetingHandler{
		meetings:   meetings,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle deletes the meeting together with its slots and their votes.
func (h *DeleteMeetingHandler) Handle(ctx context.Context, cmd DeleteMeetingCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		meeting, err := h.meetings.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return sharedApplication.Unexpected("find meeting", err)
		}
		if err := guard(domain.AuthorizeResource(cmd.CallerID, meeting), ErrMeetingNotFound, ErrNotMeetingOwner); err != nil {
			return err
		}

		meeting.MarkDeleted(h.clock.Now())
		if err := h.meetings.Delete(txCtx, meeting.ID()); err != nil {
			h.logger.ErrorContext(ctx, "meeting deletion failed", "meeting_id", meeting.ID(), "error", err)
			return classifyWrite("delete meeting", sharedApplication.ErrDeletion, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.CallerID, meeting)
	})
	if err != nil {
		return sharedApplication.Unexpected("delete meeting", err)
	}

	invalidate(ctx, h.cache, h.logger, cmd.MeetingID)
	return nil
}
