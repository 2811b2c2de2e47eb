package bookings

import "time"

type AttendeeInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	TimeZone string `json:"timeZone" binding:"required"`
	Language string `json:"language"`
}

type CreateBookingRequest struct {
	EventTypeID            int64          `json:"eventTypeId" binding:"required"`
	Start                  string         `json:"start" binding:"required"`
	Attendee               AttendeeInput  `json:"attendee" binding:"required"`
	Guests                 []string       `json:"guests"`
	MeetingURL             string         `json:"meetingUrl"`
	Metadata               map[string]any `json:"metadata"`
	BookingFieldsResponses map[string]any `json:"bookingFieldsResponses"`
}

type RescheduleBookingRequest struct {
	Start              string `json:"start" binding:"required"`
	ReschedulingReason string `json:"reschedulingReason"`
}

type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

type MarkAbsentRequest struct {
	Host      bool     `json:"host"`
	Attendees []string `json:"attendees"`
}

type ListBookingsQuery struct {
	AttendeeEmail string  `form:"attendeeEmail"`
	AttendeeName  string  `form:"attendeeName"`
	AfterStart    string  `form:"afterStart"`
	BeforeEnd     string  `form:"beforeEnd"`
	TeamID        int64   `form:"teamId"`
	TeamIDs       []int64 `form:"teamIds"`
	EventTypeID   int64   `form:"eventTypeId"`
	EventTypeIDs  []int64 `form:"eventTypeIds"`
	SortStart     string  `form:"sortStart"`
	SortEnd       string  `form:"sortEnd"`
	SortCreated   string  `form:"sortCreated"`
}

type AttendeeOutput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"`
	Language string `json:"language,omitempty"`
	Absent   bool   `json:"absent"`
}

type BookingOutput struct {
	ID                 int64          `json:"id"`
	UID                string         `json:"uid"`
	HostID             *int64         `json:"hostId,omitempty"`
	Status             string         `json:"status"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	ReschedulingReason string         `json:"reschedulingReason,omitempty"`
	RescheduledFromUID string         `json:"rescheduledFromUid,omitempty"`
	RescheduledToUID   string         `json:"rescheduledToUid,omitempty"`
	Start              time.Time      `json:"start"`
	End                time.Time      `json:"end"`
	Duration           int            `json:"duration"`
	EventTypeID        *int64         `json:"eventTypeId,omitempty"`
	Attendee           AttendeeOutput `json:"attendee"`
	Guests             []string       `json:"guests,omitempty"`
	MeetingURL         string         `json:"meetingUrl,omitempty"`
	AbsentHost         bool           `json:"absentHost"`
}

type RecurringBookingOutput struct {
	BookingOutput
	RecurringBookingUID string `json:"recurringBookingUid"`
}

// BookingResult is what mutating operations hand to the transport layer:
// exactly one of Booking or Recurring is set.
type BookingResult struct {
	Booking   *BookingOutput
	Recurring []RecurringBookingOutput
}

// Data returns the envelope payload.
func (r BookingResult) Data() any {
	if r.Recurring != nil {
		return r.Recurring
	}
	return r.Booking
}
