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

// CreateVoteCommand casts a vote for a slot.
type CreateVoteCommand struct {
	VoterID    uuid.UUID
	TimeSlotID uuid.UUID
}

// CreateVoteHandler handles the CreateVoteCommand.
type CreateVoteHandler struct {
	slots      domain.TimeSlotRepository
	votes      domain.VoteRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	cache      MeetingCacheInvalidator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewCreateVoteHandler creates a new CreateVoteHandler.
func NewCreateVoteHandler(
	slots domain.TimeSlotRepository,
	votes domain.VoteRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	cache MeetingCacheInvalidator,
	clk clock.Clock,
	logger *slog.Logger,
) *CreateVoteHandler {
	return &CreateVoteHandler{
		slots:      slots,
		votes:      votes,
		outboxRepo: outboxRepo,
		uow:        uow,
		cache:      cache,
		clock:      clk,
		logger:     loggerOrDefault(logger),
	}
}

// Handle executes the CreateVoteCommand. Voting for a missing slot is a
// creation failure. Repeated votes by the same user are accepted.
func (h *CreateVoteHandler) Handle(ctx context.Context, cmd CreateVoteCommand) (*domain.Vote, error) {
	var (
		vote      *domain.Vote
		meetingID uuid.UUID
	)
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		slot, err := h.slots.FindByID(txCtx, cmd.TimeSlotID)
		if err != nil {
			return sharedApplication.Unexpected("find time slot", err)
		}
		if slot == nil {
			return sharedApplication.Fail(sharedApplication.ErrCreation, ErrTimeSlotNotFound)
		}
		meetingID = slot.MeetingID()

		vote = domain.CastVote(cmd.VoterID, slot, h.clock.Now())
		if err := h.votes.Create(txCtx, vote); err != nil {
			h.logger.ErrorContext(ctx, "vote creation failed", "timeslot_id", cmd.TimeSlotID, "error", err)
			return classifyWrite("create vote", sharedApplication.ErrCreation, err)
		}
		return recordEvents(ctx, txCtx, h.outboxRepo, cmd.VoterID, vote)
	})
	if err != nil {
		return nil, sharedApplication.Unexpected("create vote", err)
	}
	vote.ClearDomainEvents()

	invalidate(ctx, h.cache, h.logger, meetingID)
	return vote, nil
}
