package outbox

import (
	"context"
	"time"
)

// Writer is the side of the outbox used by command handlers.
type Writer interface {
	// SaveBatch stores messages inside the caller's transaction when one is in ctx.
	SaveBatch(ctx context.Context, msgs []*Message) error
}

// Repository defines the interface for outbox persistence.
type Repository interface {
	Writer

	// GetUnpublished returns pending messages due at or before now, oldest first.
	GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a publish failure and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error

	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeleteOld removes messages published before cutoff.
	DeleteOld(ctx context.Context, cutoff time.Time) (int64, error)
}
