package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"calbook/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Service wires the input and output transformers to the booking store.
type Service struct {
	input      *InputService
	output     *OutputService
	eventTypes EventTypeRepository
	bookings   BookingRepository
	log        *zap.Logger
}

func NewService(input *InputService, output *OutputService, eventTypes EventTypeRepository, bookings BookingRepository, log *zap.Logger) *Service {
	return &Service{
		input:      input,
		output:     output,
		eventTypes: eventTypes,
		bookings:   bookings,
		log:        log,
	}
}

// Create books a single or recurring event depending on whether the event
// type carries a recurrence rule.
func (s *Service) Create(ctx context.Context, authorization, clientID string, req CreateBookingRequest) (BookingResult, error) {
	rc := s.input.EnrichRequest(ctx, authorization, clientID)
	rc.BookingLocation = req.MeetingURL

	eventType, err := s.eventTypes.GetByIDWithOwnerAndTeam(ctx, req.EventTypeID)
	if err != nil {
		return BookingResult{}, err
	}
	if eventType == nil {
		return BookingResult{}, fmt.Errorf("%w: event type with id=%d not found", ErrNotFound, req.EventTypeID)
	}

	if eventType.Recurrence != nil {
		records, err := s.input.TransformRecurringCreate(eventType, req)
		if err != nil {
			return BookingResult{}, err
		}

		// Occurrences are persisted strictly in expansion order.
		created := make([]domain.Booking, 0, len(records))
		for i := range records {
			b, err := s.persistRecord(ctx, &records[i], rc, "")
			if err != nil {
				return BookingResult{}, err
			}
			created = append(created, *b)
		}

		views, err := s.output.RecurringViews(ctx, created)
		if err != nil {
			return BookingResult{}, err
		}
		return BookingResult{Recurring: views}, nil
	}

	record, err := s.input.TransformCreate(eventType, req)
	if err != nil {
		return BookingResult{}, err
	}

	b, err := s.persistRecord(ctx, record, rc, "")
	if err != nil {
		return BookingResult{}, err
	}

	view, err := s.output.View(b)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: &view}, nil
}

// Reschedule creates a replacement booking and marks the original as
// rescheduled.
func (s *Service) Reschedule(ctx context.Context, authorization, clientID, bookingUID string, req RescheduleBookingRequest) (BookingOutput, error) {
	rc := s.input.EnrichRequest(ctx, authorization, clientID)

	location, err := s.input.RescheduleLocation(ctx, bookingUID)
	if err != nil {
		return BookingOutput{}, err
	}
	rc.BookingLocation = location

	record, err := s.input.TransformReschedule(ctx, bookingUID, req)
	if err != nil {
		return BookingOutput{}, err
	}

	old, err := s.bookings.GetByUIDWithAttendees(ctx, bookingUID)
	if err != nil {
		return BookingOutput{}, err
	}
	if old == nil {
		return BookingOutput{}, fmt.Errorf("%w: booking with uid=%s not found", ErrNotFound, bookingUID)
	}

	replacement, err := s.persistRecord(ctx, record, rc, bookingUID)
	if err != nil {
		return BookingOutput{}, err
	}

	if err := s.bookings.MarkRescheduled(ctx, bookingUID); err != nil {
		return BookingOutput{}, err
	}
	old.Rescheduled = true

	return s.output.RescheduledView(old, replacement)
}

// Cancel cancels one booking, or a whole recurring series when the uid is a
// recurring-group id.
func (s *Service) Cancel(ctx context.Context, authorization, clientID, bookingUID string, req CancelBookingRequest) (BookingResult, error) {
	rc := s.input.EnrichRequest(ctx, authorization, clientID)
	s.log.Debug("cancel booking",
		zap.String("uid", bookingUID),
		zap.Bool("no_email", rc.NoEmail),
	)

	record, err := s.input.TransformCancel(ctx, bookingUID, req)
	if err != nil {
		return BookingResult{}, err
	}

	if record.AllRemainingBookings {
		if err := s.bookings.CancelByRecurringGroupID(ctx, bookingUID, record.CancellationReason); err != nil {
			return BookingResult{}, err
		}
		group, err := s.bookings.GetByRecurringGroupID(ctx, bookingUID)
		if err != nil {
			return BookingResult{}, err
		}
		views := make([]RecurringBookingOutput, 0, len(group))
		for i := range group {
			view, err := s.output.RecurringView(&group[i])
			if err != nil {
				return BookingResult{}, err
			}
			views = append(views, view)
		}
		return BookingResult{Recurring: views}, nil
	}

	existing, err := s.bookings.GetByUID(ctx, record.UID)
	if err != nil {
		return BookingResult{}, err
	}
	if existing == nil {
		return BookingResult{}, fmt.Errorf("%w: booking with uid=%s not found", ErrNotFound, record.UID)
	}

	if err := s.bookings.CancelByUID(ctx, record.UID, record.CancellationReason); err != nil {
		return BookingResult{}, err
	}

	cancelled, err := s.bookings.GetByUIDWithAttendees(ctx, record.UID)
	if err != nil {
		return BookingResult{}, err
	}
	if cancelled == nil {
		return BookingResult{}, fmt.Errorf("%w: booking with uid=%s disappeared during cancellation", ErrDataIntegrity, record.UID)
	}

	view, err := s.output.View(cancelled)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: &view}, nil
}

// MarkAbsent flags the host and/or attendees of a past booking as no-shows.
func (s *Service) MarkAbsent(ctx context.Context, bookingUID string, req MarkAbsentRequest) (BookingOutput, error) {
	record := s.input.TransformMarkAbsent(req)

	existing, err := s.bookings.GetByUID(ctx, bookingUID)
	if err != nil {
		return BookingOutput{}, err
	}
	if existing == nil {
		return BookingOutput{}, fmt.Errorf("%w: booking with uid=%s not found", ErrNotFound, bookingUID)
	}

	emails := make([]string, 0, len(record.Attendees))
	for _, a := range record.Attendees {
		emails = append(emails, a.Email)
	}
	if err := s.bookings.SetAbsences(ctx, bookingUID, record.NoShowHost, emails); err != nil {
		return BookingOutput{}, err
	}

	updated, err := s.bookings.GetByUIDWithAttendees(ctx, bookingUID)
	if err != nil {
		return BookingOutput{}, err
	}
	if updated == nil {
		return BookingOutput{}, fmt.Errorf("%w: booking with uid=%s disappeared", ErrDataIntegrity, bookingUID)
	}
	return s.output.View(updated)
}

// Get returns the external view of one stored booking.
func (s *Service) Get(ctx context.Context, bookingUID string) (any, error) {
	b, err := s.bookings.GetByUIDWithAttendees(ctx, bookingUID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: booking with uid=%s not found", ErrNotFound, bookingUID)
	}

	if b.RecurringGroupID != "" {
		return s.output.RecurringView(b)
	}
	return s.output.View(b)
}

// List returns views for every booking matching the query filters.
func (s *Service) List(ctx context.Context, query ListBookingsQuery) ([]any, error) {
	filters, sort, err := s.input.TransformListFilters(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.bookings.List(ctx, filters, sort)
	if err != nil {
		return nil, err
	}

	views := make([]any, 0, len(rows))
	for i := range rows {
		if rows[i].RecurringGroupID != "" {
			view, err := s.output.RecurringView(&rows[i])
			if err != nil {
				return nil, err
			}
			views = append(views, view)
			continue
		}
		view, err := s.output.View(&rows[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// persistRecord turns a canonical record into a stored booking with a fresh
// uid and a single attendee derived from the record's responses.
func (s *Service) persistRecord(ctx context.Context, rec *BookingRecord, rc RequestContext, fromReschedule string) (*domain.Booking, error) {
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, err
	}

	name, _ := rec.Responses["name"].(string)
	email, _ := rec.Responses["email"].(string)

	eventTypeID := rec.EventTypeID
	b := &domain.Booking{
		UID:              uuid.NewString(),
		UserID:           rec.HostUserID,
		EventTypeID:      &eventTypeID,
		Status:           domain.BookingAccepted,
		StartTime:        rec.Start,
		EndTime:          rec.End,
		TimeZone:         rec.TimeZone,
		Location:         rc.BookingLocation,
		Responses:        responses,
		Metadata:         metadata,
		FromReschedule:   fromReschedule,
		RecurringGroupID: rec.RecurringGroupID,
		Attendees: []domain.Attendee{{
			Name:     name,
			Email:    email,
			TimeZone: rec.TimeZone,
			Locale:   rec.Language,
		}},
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: booking uid collision", ErrConflict)
		}
		return nil, err
	}
	return b, nil
}
