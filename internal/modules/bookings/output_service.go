package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"calbook/internal/domain"
	"calbook/internal/pkg/validator"
)

// BookingResponses is the validated shape every stored responses blob must
// conform to.
type BookingResponses struct {
	Email             string   `json:"email" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	Guests            []string `json:"guests,omitempty"`
	RescheduledReason string   `json:"rescheduledReason,omitempty"`
}

// parseBookingResponses validates a stored responses blob. Failure is a hard
// validation error, never a silent default.
func parseBookingResponses(raw json.RawMessage) (BookingResponses, error) {
	var responses BookingResponses
	if len(raw) == 0 {
		return responses, fmt.Errorf("%w: booking responses are empty", ErrValidation)
	}
	if err := json.Unmarshal(raw, &responses); err != nil {
		return responses, fmt.Errorf("%w: booking responses: %v", ErrValidation, err)
	}
	if err := validator.ValidateErr(responses); err != nil {
		return responses, fmt.Errorf("%w: booking responses: %v", ErrValidation, err)
	}
	return responses, nil
}

// OutputService derives external booking views from stored bookings.
type OutputService struct {
	bookings BookingRepository
}

func NewOutputService(bookings BookingRepository) *OutputService {
	return &OutputService{bookings: bookings}
}

// derivedStatus reports "rescheduled" for a rescheduled booking without a
// cancellation reason; otherwise the stored status, lowercased. A
// cancellation reason always wins over the rescheduled flag.
func derivedStatus(b *domain.Booking) string {
	if b.Rescheduled && b.CancellationReason == "" {
		return "rescheduled"
	}
	return strings.ToLower(string(b.Status))
}

func durationMinutes(b *domain.Booking) int {
	return int(b.EndTime.Sub(b.StartTime) / time.Minute)
}

func (s *OutputService) matchedAttendee(b *domain.Booking) (domain.Attendee, BookingResponses, error) {
	responses, err := parseBookingResponses(b.Responses)
	if err != nil {
		return domain.Attendee{}, BookingResponses{}, err
	}

	attendee, ok := findAttendee(b.Attendees, responses.Email)
	if !ok {
		return domain.Attendee{}, BookingResponses{}, fmt.Errorf(
			"%w: attendee with email %s not found on booking with uid=%s",
			ErrDataIntegrity, responses.Email, b.UID)
	}
	return attendee, responses, nil
}

// View maps one stored booking onto the external view.
func (s *OutputService) View(b *domain.Booking) (BookingOutput, error) {
	attendee, responses, err := s.matchedAttendee(b)
	if err != nil {
		return BookingOutput{}, err
	}

	return BookingOutput{
		ID:                 b.ID,
		UID:                b.UID,
		HostID:             b.UserID,
		Status:             derivedStatus(b),
		CancellationReason: b.CancellationReason,
		ReschedulingReason: responses.RescheduledReason,
		RescheduledFromUID: b.FromReschedule,
		Start:              b.StartTime,
		End:                b.EndTime,
		Duration:           durationMinutes(b),
		EventTypeID:        b.EventTypeID,
		Attendee: AttendeeOutput{
			Name:     attendee.Name,
			Email:    attendee.Email,
			TimeZone: attendee.TimeZone,
			Language: attendee.Locale,
			Absent:   attendee.NoShow,
		},
		Guests:     responses.Guests,
		MeetingURL: b.Location,
		AbsentHost: b.NoShowHost,
	}, nil
}

// RescheduledView reports the old booking's identity, timing and attendee,
// while the rescheduling reason comes from the new booking's responses.
// Duration is deliberately computed from the old booking.
func (s *OutputService) RescheduledView(old, replacement *domain.Booking) (BookingOutput, error) {
	attendee, responses, err := s.matchedAttendee(old)
	if err != nil {
		return BookingOutput{}, err
	}

	newResponses, err := parseBookingResponses(replacement.Responses)
	if err != nil {
		return BookingOutput{}, err
	}

	return BookingOutput{
		ID:                 old.ID,
		UID:                old.UID,
		HostID:             old.UserID,
		Status:             derivedStatus(old),
		CancellationReason: old.CancellationReason,
		ReschedulingReason: newResponses.RescheduledReason,
		RescheduledFromUID: old.FromReschedule,
		RescheduledToUID:   replacement.UID,
		Start:              old.StartTime,
		End:                old.EndTime,
		Duration:           durationMinutes(old),
		EventTypeID:        old.EventTypeID,
		Attendee: AttendeeOutput{
			Name:     attendee.Name,
			Email:    attendee.Email,
			TimeZone: attendee.TimeZone,
			Language: attendee.Locale,
			Absent:   attendee.NoShow,
		},
		Guests:     responses.Guests,
		MeetingURL: old.Location,
		AbsentHost: old.NoShowHost,
	}, nil
}

// RecurringView is the simple view plus the recurring-group uid. The status
// is always the raw normalized stored status, never remapped to
// "rescheduled".
func (s *OutputService) RecurringView(b *domain.Booking) (RecurringBookingOutput, error) {
	attendee, responses, err := s.matchedAttendee(b)
	if err != nil {
		return RecurringBookingOutput{}, err
	}

	return RecurringBookingOutput{
		BookingOutput: BookingOutput{
			ID:                 b.ID,
			UID:                b.UID,
			HostID:             b.UserID,
			Status:             strings.ToLower(string(b.Status)),
			CancellationReason: b.CancellationReason,
			Start:              b.StartTime,
			End:                b.EndTime,
			Duration:           durationMinutes(b),
			EventTypeID:        b.EventTypeID,
			Attendee: AttendeeOutput{
				Name:     attendee.Name,
				Email:    attendee.Email,
				TimeZone: attendee.TimeZone,
				Language: attendee.Locale,
				Absent:   attendee.NoShow,
			},
			Guests:     responses.Guests,
			MeetingURL: b.Location,
			AbsentHost: b.NoShowHost,
		},
		RecurringBookingUID: b.RecurringGroupID,
	}, nil
}

// RecurringViews re-fetches every freshly created occurrence by id and maps
// it through the recurring view, preserving input order.
func (s *OutputService) RecurringViews(ctx context.Context, created []domain.Booking) ([]RecurringBookingOutput, error) {
	views := make([]RecurringBookingOutput, 0, len(created))
	for _, b := range created {
		if b.ID == 0 {
			return nil, fmt.Errorf("%w: booking was not created", ErrDataIntegrity)
		}

		stored, err := s.bookings.GetByIDWithAttendees(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, fmt.Errorf("%w: booking with id=%d was not found in the database", ErrDataIntegrity, b.ID)
		}

		view, err := s.RecurringView(stored)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
