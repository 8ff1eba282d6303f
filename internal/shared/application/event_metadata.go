package application

import (
	"context"

	"github.com/felixgeelhaar/quorum/internal/shared/domain"
	"github.com/felixgeelhaar/quorum/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates metadata for events raised on behalf of actorID.
// The correlation id is taken from the request context when present.
func NewEventMetadata(ctx context.Context, actorID uuid.UUID) domain.EventMetadata {
	correlationID := observability.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = observability.RequestIDFromContext(ctx)
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		ActorID:       actorID,
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
