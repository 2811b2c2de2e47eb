package eventtypes

import (
	"context"

	"calbook/internal/domain"
)

// EventTypeRepository resolves event types with their owner or team loaded.
// A nil event type with nil error means the id is unknown.
type EventTypeRepository interface {
	GetByIDWithOwnerAndTeam(ctx context.Context, id int64) (*domain.EventType, error)
}
