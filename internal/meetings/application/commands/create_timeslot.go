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

// CreateTimeSlotCommand proposes a window for a meeting. Any user may
// propose a slot on any meeting.
type CreateTimeSlotCommand struct {
	ProposerID uuid.UUID
	MeetingID  uuid.UUID
	Start      time.Time
	End        time.Time
}

// CreateTimeSlotHandler handles the CreateTimeSlotCommand.
type CreateTimeSlotHandler struct {
	slots      domain.TimeSlotRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewCreateTimeSlotHandler creates a new CreateTimeSlotHandler.
func NewCreateTimeSlotHandler(
	slots domain.TimeSlotRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *CreateTimeSlotHandler {
	return &CreateTimeSlotHandler{
		slots:      slots,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle executes the CreateTimeSlotCommand. An inadmissible window fails
// with domain.ErrInadmissibleWindow, an unknown meeting with
// database.ErrConstraintViolation; both are creation failures.
func (h *CreateTimeSlotHandler) Handle(ctx context.Context, cmd CreateTimeSlotCommand) (*domain.TimeSlot, error) {
	slot, err := domain.NewTimeSlot(cmd.ProposerID, cmd.MeetingID, cmd.Start, cmd.End, h.clock.Now())
	if err != nil {
		return nil, sharedApplication.Fail(sharedApplication.ErrCreation, err)
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.slots.Create(txCtx, slot); err != nil {
			h.logger.ErrorContext(ctx, "time slot creation failed",
				"meeting_id", cmd.MeetingID,
				"error", err,
			)
			return classifyWrite("create time slot", sharedApplication.ErrCreation, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.ProposerID, slot)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("create time slot", err)
	}
	slot.ClearDomainEvents()

	invalidate(ctx, h.cache, h.logger, slot.MeetingID())
	return slot, nil
}
