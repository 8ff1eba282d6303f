package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/quorum/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrTimeSlotNotFound    = errors.New("time slot not found")
	ErrVoteNotFound        = errors.New("vote not found")
	ErrNotMeetingOwner     = errors.New("user does not own this meeting")
	ErrNotTimeSlotProposer = errors.New("user did not propose this time slot")
	ErrNotVoter            = errors.New("user did not cast this vote")
	ErrMeetingMismatch     = errors.New("time slot belongs to a different meeting")
)

// MeetingCacheInvalidator drops cached views of a meeting.
type MeetingCacheInvalidator interface {
	Invalidate(ctx context.Context, meetingID uuid.UUID) error
}

// guard turns an ownership decision into a classified error.
func guard(decision domain.Decision, notFound, forbidden error) error {
	switch decision {
	case domain.Permitted:
		return nil
	case domain.NotFound:
		return sharedApplication.Fail(sharedApplication.ErrNotFound, notFound)
	default:
		return sharedApplication.Fail(sharedApplication.ErrUnauthorized, forbidden)
	}
}

// classifyWrite maps a repository write error to kind when it is an
// integrity violation and to an unexpected failure otherwise.
func classifyWrite(op string, kind, err error) error {
	if errors.Is(err, database.ErrConstraintViolation) {
		return sharedApplication.Fail(kind, err)
	}
	return sharedApplication.Unexpected(op, err)
}

// recordEvents stores the pending events of aggregates in the outbox.
func recordEvents(ctx, txCtx context.Context, writer outbox.Writer, actorID uuid.UUID, aggregates ...sharedDomain.AggregateRoot) error {
	var events []sharedDomain.DomainEvent
	for _, aggregate := range aggregates {
		events = append(events, aggregate.DomainEvents()...)
	}
	if len(events) == 0 {
		return nil
	}

	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, actorID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return sharedApplication.Unexpected("encode events", err)
	}
	if err := writer.SaveBatch(txCtx, msgs); err != nil {
		return sharedApplication.Unexpected("save outbox messages", err)
	}
	return nil
}

func clearEvents(aggregates ...sharedDomain.AggregateRoot) {
	for _, aggregate := range aggregates {
		aggregate.ClearDomainEvents()
	}
}

// invalidate evicts a meeting view after a committed change. A cache
// failure does not fail the command; the entry expires on its own.
func invalidate(ctx context.Context, cache MeetingCacheInvalidator, logger *slog.Logger, meetingID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, meetingID); err != nil {
		logger.WarnContext(ctx, "failed to invalidate meeting cache",
			"meeting_id", meetingID,
			"error", err,
		)
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
