package domain

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	BookingAccepted     BookingStatus = "accepted"
	BookingPending      BookingStatus = "pending"
	BookingCancelled    BookingStatus = "cancelled"
	BookingRejected     BookingStatus = "rejected"
	BookingAwaitingHost BookingStatus = "awaiting_host"
)

type Booking struct {
	ID                 int64           `json:"id"`
	UID                string          `json:"uid"`
	UserID             *int64          `json:"user_id,omitempty"`
	EventTypeID        *int64          `json:"event_type_id,omitempty"`
	Status             BookingStatus   `json:"status"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	TimeZone           string          `json:"time_zone"`
	Location           string          `json:"location,omitempty"`
	Responses          json.RawMessage `json:"responses,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	Rescheduled        bool            `json:"rescheduled"`
	FromReschedule     string          `json:"from_reschedule,omitempty"`
	RecurringGroupID   string          `json:"recurring_group_id,omitempty"`
	NoShowHost         bool            `json:"no_show_host"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	Attendees []Attendee `json:"attendees,omitempty"`
}

type Attendee struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	TimeZone  string `json:"time_zone"`
	Locale    string `json:"locale,omitempty"`
	NoShow    bool   `json:"no_show"`
}
