package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quorum/pkg/clock"
	"github.com/google/uuid"
)

// UpdateTimeSlotCommand reschedules a slot. Nil fields keep their current
// value. A slot cannot be moved to another meeting.
type UpdateTimeSlotCommand struct {
	CallerID   uuid.UUID
	TimeSlotID uuid.UUID
	MeetingID  *uuid.UUID
	Start      *time.Time
	End        *time.Time
}

// UpdateTimeSlotHandler handles the UpdateTimeSlotCommand.
type UpdateTimeSlotHandler struct {
	slots      domain.TimeSlotRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewUpdateTimeSlotHandler creates a new UpdateTimeSlotHandler.
func NewUpdateTimeSlotHandler(
	slots domain.TimeSlotRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *UpdateTimeSlotHandler {
	return &UpdateTimeSlotHandler{
		slots:      slots,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle executes the UpdateTimeSlotCommand. Only the proposer may update.
func (h *UpdateTimeSlotHandler) Handle(ctx context.Context, cmd UpdateTimeSlotCommand) (*domain.TimeSlot, error) {
	var slot *domain.TimeSlot
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		slot, err = h.slots.FindByID(txCtx, cmd.TimeSlotID)
		if err != nil {
			return sharedApplication.Unexpected("find time slot", err)
		}
		if err := guard(domain.AuthorizeResource(cmd.CallerID, slot), ErrTimeSlotNotFound, ErrNotTimeSlotProposer); err != nil {
			return err
		}
		if cmd.MeetingID != nil && *cmd.MeetingID != slot.MeetingID() {
			return sharedApplication.Fail(sharedApplication.ErrInvalidRequest, ErrMeetingMismatch)
		}

		if err := slot.Reschedule(cmd.Start, cmd.End, h.clock.Now()); err != nil {
			return sharedApplication.Fail(sharedApplication.ErrUpdate, err)
		}
		if err := h.slots.Update(txCtx, slot); err != nil {
			h.logger.ErrorContext(ctx, "time slot update failed", "timeslot_id", slot.ID(), "error", err)
			return classifyWrite("update time slot", sharedApplication.ErrUpdate, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.CallerID, slot)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("update time slot", err)
	}
	slot.ClearDomainEvents()

	invalidate(ctx, h.cache, h.logger, slot.MeetingID())
	return slot, nil
}
