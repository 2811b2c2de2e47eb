package bookings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"calbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func storedBooking(t *testing.T) *domain.Booking {
	t.Helper()
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:        1,
		UID:       "uid-1",
		Status:    domain.BookingAccepted,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Responses: rawResponses(t, map[string]any{"name": "Jane Doe", "email": "jane@example.com"}),
		Attendees: []domain.Attendee{{
			Name: "Jane Doe", Email: "jane@example.com", TimeZone: "Europe/Vienna", Locale: "en",
		}},
	}
}

func TestDerivedStatus(t *testing.T) {
	b := &domain.Booking{Status: domain.BookingAccepted, Rescheduled: true}
	assert.Equal(t, "rescheduled", derivedStatus(b))

	// A cancellation reason always wins over the rescheduled flag.
	b.CancellationReason = "host unavailable"
	b.Status = domain.BookingCancelled
	assert.Equal(t, "cancelled", derivedStatus(b))

	plain := &domain.Booking{Status: domain.BookingAwaitingHost}
	assert.Equal(t, "awaiting_host", derivedStatus(plain))
}

func TestOutputService_View(t *testing.T) {
	output := NewOutputService(new(MockBookingRepository))

	b := storedBooking(t)
	view, err := output.View(b)

	assert.NoError(t, err)
	assert.Equal(t, "uid-1", view.UID)
	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, 30, view.Duration)
	assert.Equal(t, "Jane Doe", view.Attendee.Name)
	assert.Equal(t, "Europe/Vienna", view.Attendee.TimeZone)
	assert.Equal(t, "en", view.Attendee.Language)
}

func TestOutputService_View_AttendeeMismatch(t *testing.T) {
	output := NewOutputService(new(MockBookingRepository))

	b := storedBooking(t)
	b.Attendees = []domain.Attendee{{Name: "Other", Email: "other@example.com"}}

	_, err := output.View(b)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestOutputService_View_InvalidResponses(t *testing.T) {
	output := NewOutputService(new(MockBookingRepository))

	b := storedBooking(t)
	b.Responses = rawResponses(t, map[string]any{"name": "Jane Doe"}) // no email

	_, err := output.View(b)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOutputService_RescheduledView(t *testing.T) {
	output := NewOutputService(new(MockBookingRepository))

	old := storedBooking(t)
	old.Rescheduled = true

	newStart := time.Date(2024, 1, 20, 14, 0, 0, 0, time.UTC)
	replacement := &domain.Booking{
		ID:        2,
		UID:       "uid-2",
		Status:    domain.BookingAccepted,
		StartTime: newStart,
		EndTime:   newStart.Add(45 * time.Minute),
		Responses: rawResponses(t, map[string]any{
			"name":              "Jane Doe",
			"email":             "jane@example.com",
			"rescheduledReason": "host conflict",
		}),
	}

	view, err := output.RescheduledView(old, replacement)

	assert.NoError(t, err)
	// Identity and timing come from the old booking.
	assert.Equal(t, "uid-1", view.UID)
	assert.Equal(t, "rescheduled", view.Status)
	assert.True(t, view.Start.Equal(old.StartTime))
	assert.Equal(t, 30, view.Duration)
	// The reason and forward link come from the replacement.
	assert.Equal(t, "host conflict", view.ReschedulingReason)
	assert.Equal(t, "uid-2", view.RescheduledToUID)
}

func TestOutputService_RecurringView_StatusNeverRemapped(t *testing.T) {
	output := NewOutputService(new(MockBookingRepository))

	b := storedBooking(t)
	b.Rescheduled = true
	b.RecurringGroupID = "group-1"

	view, err := output.RecurringView(b)

	assert.NoError(t, err)
	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, "group-1", view.RecurringBookingUID)
}

func TestOutputService_RecurringViews_NotCreated(t *testing.T) {
	output := NewOutputService(new(MockBookingRepository))

	_, err := output.RecurringViews(context.Background(), []domain.Booking{{ID: 0}})
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.ErrorContains(t, err, "was not created")
}

func TestOutputService_RecurringViews_RowMissing(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockBookings.On("GetByIDWithAttendees", mock.Anything, int64(77)).Return(nil, nil)

	output := NewOutputService(mockBookings)

	_, err := output.RecurringViews(context.Background(), []domain.Booking{{ID: 77}})
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestOutputService_RecurringViews_PreservesOrder(t *testing.T) {
	mockBookings := new(MockBookingRepository)

	stored := func(id int64) *domain.Booking {
		b := storedBooking(t)
		b.ID = id
		b.RecurringGroupID = "group-1"
		return b
	}
	mockBookings.On("GetByIDWithAttendees", mock.Anything, int64(2)).Return(stored(2), nil)
	mockBookings.On("GetByIDWithAttendees", mock.Anything, int64(1)).Return(stored(1), nil)

	output := NewOutputService(mockBookings)

	views, err := output.RecurringViews(context.Background(), []domain.Booking{{ID: 2}, {ID: 1}})

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, int64(2), views[0].ID)
	assert.Equal(t, int64(1), views[1].ID)
}

func TestParseBookingResponses(t *testing.T) {
	responses, err := parseBookingResponses(json.RawMessage(`{"name":"Jane","email":"jane@example.com","guests":["g@example.com"]}`))
	assert.NoError(t, err)
	assert.Equal(t, "Jane", responses.Name)
	assert.Equal(t, []string{"g@example.com"}, responses.Guests)

	_, err = parseBookingResponses(nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = parseBookingResponses(json.RawMessage(`{"name":"Jane"}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = parseBookingResponses(json.RawMessage(`{broken`))
	assert.ErrorIs(t, err, ErrValidation)
}
