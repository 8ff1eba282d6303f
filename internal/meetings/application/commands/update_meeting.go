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

// UpdateMeetingCommand contains the data needed to update a meeting.
// Nil fields are left unchanged.
type UpdateMeetingCommand struct {
	CallerID    uuid.UUID
	MeetingID   uuid.UUID
	Title       *string
	Description *string
}

// UpdateMeetingHandler handles the UpdateMeetingCommand.
type UpdateMeetingHandler struct {
	meetings   domain.MeetingRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewUpdateMeetingHandler creates a new UpdateMeetingHandler.
func NewUpdateMeetingHandler(
	meetings domain.MeetingRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *UpdateMeetingHandler {
	return &UpdateMeetingHandler{
		meetings:   meetings,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle executes the UpdateMeetingCommand. Only the owner may update.
func (h *UpdateMeetingHandler) Handle(ctx context.Context, cmd UpdateMeetingCommand) (*domain.Meeting, error) {
	var meeting *domain.Meeting
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		meeting, err = h.meetings.FindByID(txCtx, cmd.MeetingID)
		if err != nil {
			return sharedApplication.Unexpected("find meeting", err)
		}
		if err := guard(domain.AuthorizeResource(cmd.CallerID, meeting), ErrMeetingNotFound, ErrNotMeetingOwner); err != nil {
			return err
		}

		if err := meeting.Update(cmd.Title, cmd.Description, h.clock.Now()); err != nil {
			return sharedApplication.Fail(sharedApplication.ErrValidation, err)
		}
		if err := h.meetings.Update(txCtx, meeting); err != nil {
			h.logger.ErrorContext(ctx, "meeting update failed", "meeting_id", meeting.ID(), "error", err)
			return classifyWrite("update meeting", sharedApplication.ErrUpdate, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.CallerID, meeting)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("update meeting", err)
	}
	meeting.ClearDomainEvents()

	invalidate(ctx, h.cache, h.logger, meeting.ID())
	return meeting, nil
}
