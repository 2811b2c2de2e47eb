package bookings

import (
	"time"

	"calbook/internal/domain"
	"calbook/internal/modules/oauth"
)

// RequestContext is the enrichment result attached to every inbound booking
// request. Assembled once per request and never mutated afterwards.
type RequestContext struct {
	// OwnerID is resolved best-effort from the bearer token; nil when no
	// token was supplied or resolution failed.
	OwnerID *int64

	Platform        oauth.PlatformParams
	BookingLocation string

	// NoEmail is always the inverse of Platform.EmailsEnabled.
	NoEmail bool
}

// BookingRecord is the canonical persistence-ready shape of a booking
// derived from an external request.
type BookingRecord struct {
	Start         time.Time
	End           time.Time
	EventTypeID   int64
	EventTypeSlug string
	TimeZone      string
	Language      string
	Metadata      map[string]any
	Guests        []string

	// Responses always contains the attendee name and email, merged over
	// any caller-supplied field responses.
	Responses map[string]any

	// Owner is the event type owner's username, or the owning team's slug
	// when there is no individual owner.
	Owner      string
	HostUserID *int64

	RecurringGroupID string
	SchedulingType   domain.SchedulingType
}

// CancelRecord is the canonical cancellation instruction.
type CancelRecord struct {
	UID                  string
	CancellationReason   string
	AllRemainingBookings bool
}

type AttendeeAbsence struct {
	Email  string `json:"email"`
	NoShow bool   `json:"noShow"`
}

// AbsenceRecord is the canonical mark-absent instruction.
type AbsenceRecord struct {
	NoShowHost bool              `json:"noShowHost"`
	Attendees  []AttendeeAbsence `json:"attendees,omitempty"`
}
