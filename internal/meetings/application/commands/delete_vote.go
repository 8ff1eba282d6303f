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

// DeleteVoteCommand identifies the vote to retract.
type DeleteVoteCommand struct {
	CallerID uuid.UUID
	VoteID   uuid.UUID
}

// DeleteVoteHandler handles the DeleteVoteCommand.
type DeleteVoteHandler struct {
	slots      domain.TimeSlotRepository
	votes      domain.VoteRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewDeleteVoteHandler creates a new DeleteVoteHandler.
func NewDeleteVoteHandler(
	slots domain.TimeSlotRepository,
	votes domain.VoteRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *DeleteVoteHandler {
	return &DeleteVoteHandler{
		slots:      slots,
		votes:      votes,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle deletes the vote. Only the voter may delete it.
func (h *DeleteVoteHandler) Handle(ctx context.Context, cmd DeleteVoteCommand) error {
	var meetingID uuid.UUID
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		vote, err := h.votes.FindByID(txCtx, cmd.VoteID)
		if err != nil {
			return sharedApplication.Unexpected("find vote", err)
		}
		if err := guard(domain.AuthorizeResource(cmd.CallerID, vote), ErrVoteNotFound, ErrNotVoter); err != nil {
			return err
		}

		slot, err := h.slots.FindByID(txCtx, vote.TimeSlotID())
		if err != nil {
			return sharedApplication.Unexpected("find time slot", err)
		}
		if slot != nil {
			meetingID = slot.MeetingID()
		}

		vote.Retract(meetingID, h.clock.Now())
		if err := h.votes.Delete(txCtx, vote.ID()); err != nil {
			h.logger.ErrorContext(ctx, "vote deletion failed", "vote_id", vote.ID(), "error", err)
			return classifyWrite("delete vote", sharedApplication.ErrDeletion, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.CallerID, vote)
	})
	if err != nil {
		return sharedApplication.Unexpected("delete vote", err)
	}

	if meetingID != uuid.Nil {
		invalidate(ctx, h.cache, h.logger, meetingID)
	}
	return nil
}
