package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quorum/pkg/clock"
	"github.com/google/uuid"
)

// SlotWindow is a proposed [Start, End) window.
type SlotWindow struct {
	Start time.Time
	End   time.Time
}

// CreateMeetingCommand contains the data needed to create a meeting.
type CreateMeetingCommand struct {
	OwnerID     uuid.UUID
	Title       string
	Description *string
	TimeSlots   []SlotWindow
}

// CreateMeetingHandler handles the CreateMeetingCommand.
type CreateMeetingHandler struct {
	meetings   domain.MeetingRepository
	slots      domain.TimeSlotRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	clock      clock.Clock
	logger     *slog.Logger
}

// NewCreateMeetingHandler creates a new CreateMeetingHandler.
func NewCreateMeetingHandler(
	meetings domain.MeetingRepository,
	slots domain.TimeSlotRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	clk clock.Clock,
	logger *slog.Logger,
) *CreateMeetingHandler {
	return &CreateMeetingHandler{
		meetings:   meetings,
		slots:      slots,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle creates the meeting and its initial slots, all proposed by the
// owner, in one transaction. Every window is checked before anything is written.
func (h *CreateMeetingHandler) Handle(ctx context.Context, cmd CreateMeetingCommand) (*domain.Meeting, error) {
	now := h.clock.Now()

	meeting, err := domain.NewMeeting(cmd.OwnerID, cmd.Title, cmd.Description, now)
	if err != nil {
		return nil, sharedApplication.Fail(sharedApplication.ErrValidation, err)
	}

	slots := make([]*domain.TimeSlot, 0, len(cmd.TimeSlots))
	for _, window := range cmd.TimeSlots {
		slot, err := domain.NewTimeSlot(cmd.OwnerID, meeting.ID(), window.Start, window.End, now)
		if err != nil {
			return nil, sharedApplication.Fail(sharedApplication.ErrCreation, err)
		}
		slots = append(slots, slot)
	}

	aggregates := make([]sharedDomain.AggregateRoot, 0, len(slots)+1)
	aggregates = append(aggregates, meeting)
	for _, slot := range slots {
		aggregates = append(aggregates, slot)
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.meetings.Create(txCtx, meeting); err != nil {
			h.logger.ErrorContext(ctx, "meeting creation failed", "error", err)
			return classifyWrite("create meeting", sharedApplication.ErrCreation, err)
		}
		for _, slot := range slots {
			if err := h.slots.Create(txCtx, slot); err != nil {
				h.logger.ErrorContext(ctx, "time slot creation failed",
					"meeting_id", meeting.ID(),
					"error", err,
				)
				return classifyWrite("create time slot", sharedApplication.ErrCreation, err)
			}
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.OwnerID, aggregates...)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("create meeting", err)
	}
	clearEvents(aggregates...)

	if err := meeting.AttachTimeSlots(slots); err != nil {
		return nil, sharedApplication.Unexpected("create meeting", err)
	}
	return meeting, nil
}
