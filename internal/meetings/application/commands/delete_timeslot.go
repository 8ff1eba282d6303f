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

// DeleteTimeSlotCommand identifies the slot to withdraw.
type DeleteTimeSlotCommand struct {
	CallerID   uuid.UUID
	TimeSlotID uuid.UUID
}

// DeleteTimeSlotHandler handles the DeleteTimeSlotCommand.
type DeleteTimeSlotHandler struct {
	slots      domain.TimeSlotRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewDeleteTimeSlotHandler creates a new DeleteTimeSlotHandler.
func NewDeleteTimeSlotHandler(
	slots domain.TimeSlotRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *DeleteTimeSlotHandler {
	return &DeleteTimeSlotHandler{
		slots:      slots,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle deletes the slot and its votes. Only the proposer may delete.
func (h *DeleteTimeSlotHandler) Handle(ctx context.Context, cmd DeleteTimeSlotCommand) (*domain.TimeSlot, error) {
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

		slot.Withdraw(h.clock.Now())
		if err := h.slots.Delete(txCtx, slot.ID()); err != nil {
			h.logger.ErrorContext(ctx, "time slot deletion failed", "timeslot_id", slot.ID(), "error", err)
			return classifyWrite("delete time slot", sharedApplication.ErrDeletion, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.CallerID, slot)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("delete time slot", err)
	}
	slot.ClearDomainEvents()

	invalidate(ctx, h.cache, h.logger, slot.MeetingID())
	return slot, nil
}
