package bookings

import (
	"context"

	"calbook/internal/domain"
	"calbook/internal/modules/oauth"
	"calbook/internal/repository"
)

// EventTypeRepository resolves event types with owner/team loaded.
// Nil event type with nil error means the id is unknown.
type EventTypeRepository interface {
	GetByIDWithOwnerAndTeam(ctx context.Context, id int64) (*domain.EventType, error)
}

// BookingRepository is the booking store. Lookups return (nil, nil) when the
// booking is absent.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByUID(ctx context.Context, uid string) (*domain.Booking, error)
	GetByUIDWithAttendees(ctx context.Context, uid string) (*domain.Booking, error)
	GetByIDWithAttendees(ctx context.Context, id int64) (*domain.Booking, error)
	GetByRecurringGroupID(ctx context.Context, groupID string) ([]domain.Booking, error)
	CancelByUID(ctx context.Context, uid, reason string) error
	CancelByRecurringGroupID(ctx context.Context, groupID, reason string) error
	MarkRescheduled(ctx context.Context, uid string) error
	SetAbsences(ctx context.Context, uid string, host bool, attendeeEmails []string) error
	List(ctx context.Context, filters repository.BookingFilters, sort *repository.BookingSort) ([]domain.Booking, error)
}

// OAuthFlow resolves bearer tokens and client ids during request enrichment.
// Both calls are best-effort for the caller: failures map to defaults.
type OAuthFlow interface {
	OwnerID(ctx context.Context, accessToken string) (int64, error)
	ClientParams(ctx context.Context, clientID string) (oauth.PlatformParams, error)
}
