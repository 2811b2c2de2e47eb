package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"calbook/internal/domain"
	"calbook/internal/modules/oauth"
	"calbook/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderClientID is the request header carrying the platform client id.
const HeaderClientID = "x-platform-client-id"

const defaultLanguage = "en"

// InputService converts external booking requests into canonical records.
type InputService struct {
	flow       OAuthFlow
	eventTypes EventTypeRepository
	bookings   BookingRepository
	log        *zap.Logger
}

func NewInputService(flow OAuthFlow, eventTypes EventTypeRepository, bookings BookingRepository, log *zap.Logger) *InputService {
	return &InputService{
		flow:       flow,
		eventTypes: eventTypes,
		bookings:   bookings,
		log:        log,
	}
}

// EnrichRequest resolves the owner id and platform parameters for a request.
// Both lookups are best-effort: any failure is logged and replaced with the
// default, never propagated.
func (s *InputService) EnrichRequest(ctx context.Context, authorization, clientID string) RequestContext {
	rc := RequestContext{Platform: oauth.DefaultPlatformParams()}

	token := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if token != "" {
		if ownerID, err := s.flow.OwnerID(ctx, token); err != nil {
			s.log.Warn("booking request owner resolution failed", zap.Error(err))
		} else {
			rc.OwnerID = &ownerID
		}
	}

	if clientID != "" {
		params, err := s.flow.ClientParams(ctx, clientID)
		if err != nil {
			s.log.Warn("oauth client lookup failed",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
			params = oauth.DefaultPlatformParams()
		}
		rc.Platform = params
	}

	rc.NoEmail = !rc.Platform.EmailsEnabled
	return rc
}

// RescheduleLocation reads the stored meeting location of the booking being
// rescheduled.
func (s *InputService) RescheduleLocation(ctx context.Context, bookingUID string) (string, error) {
	booking, err := s.bookings.GetByUID(ctx, bookingUID)
	if err != nil {
		return "", err
	}
	if booking == nil {
		return "", fmt.Errorf("%w: booking with uid=%s not found", ErrNotFound, bookingUID)
	}
	return booking.Location, nil
}

// attendeeStartTime interprets an inbound start instant as UTC and
// re-expresses it in the attendee's time zone.
func attendeeStartTime(start, timeZone string) (time.Time, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unknown time zone %q", ErrValidation, timeZone)
	}

	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		// Offsetless instants are taken as UTC.
		t, err = time.ParseInLocation("2006-01-02T15:04:05", start, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: invalid start instant %q", ErrValidation, start)
		}
	}

	return t.In(loc), nil
}

// mergeResponses copies the caller-supplied field responses and overlays the
// attendee identity so it cannot be overridden by arbitrary response data.
func mergeResponses(fieldResponses map[string]any, name, email string) map[string]any {
	responses := make(map[string]any, len(fieldResponses)+2)
	for k, v := range fieldResponses {
		responses[k] = v
	}
	responses["name"] = name
	responses["email"] = email
	return responses
}

func ownerIdentifier(et *domain.EventType) string {
	if et.Owner != nil {
		return et.Owner.Username
	}
	if et.Team != nil {
		return et.Team.Slug
	}
	return ""
}

// TransformCreate builds the canonical record for a single booking request.
// The caller resolves the event type; it must not be nil.
func (s *InputService) TransformCreate(eventType *domain.EventType, input CreateBookingRequest) (*BookingRecord, error) {
	start, err := attendeeStartTime(input.Start, input.Attendee.TimeZone)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(eventType.Length) * time.Minute)

	language := input.Attendee.Language
	if language == "" {
		language = defaultLanguage
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &BookingRecord{
		Start:         start,
		End:           end,
		EventTypeID:   input.EventTypeID,
		EventTypeSlug: eventType.Slug,
		TimeZone:      input.Attendee.TimeZone,
		Language:      language,
		Metadata:      metadata,
		Guests:        input.Guests,
		Responses:     mergeResponses(input.BookingFieldsResponses, input.Attendee.Name, input.Attendee.Email),
		Owner:         ownerIdentifier(eventType),
		HostUserID:    eventType.OwnerID,
	}, nil
}

// TransformRecurringCreate expands a recurring booking request into one
// canonical record per occurrence. All records share one freshly generated
// recurring-group id. The caller resolves the event type; it must not be nil.
func (s *InputService) TransformRecurringCreate(eventType *domain.EventType, input CreateBookingRequest) ([]BookingRecord, error) {
	if eventType.Recurrence == nil {
		return nil, fmt.Errorf("%w: event type with id=%d is not a recurring event", ErrNotFound, input.EventTypeID)
	}

	start, err := attendeeStartTime(input.Start, input.Attendee.TimeZone)
	if err != nil {
		return nil, err
	}

	starts, err := expandOccurrences(eventType.Recurrence, start)
	if err != nil {
		return nil, err
	}

	language := input.Attendee.Language
	if language == "" {
		language = defaultLanguage
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	groupID := uuid.NewString()

	records := make([]BookingRecord, 0, len(starts))
	for _, occStart := range starts {
		records = append(records, BookingRecord{
			Start:            occStart,
			End:              occStart.Add(time.Duration(eventType.Length) * time.Minute),
			EventTypeID:      input.EventTypeID,
			EventTypeSlug:    eventType.Slug,
			TimeZone:         input.Attendee.TimeZone,
			Language:         language,
			Metadata:         metadata,
			Guests:           input.Guests,
			Responses:        mergeResponses(input.BookingFieldsResponses, input.Attendee.Name, input.Attendee.Email),
			Owner:            ownerIdentifier(eventType),
			HostUserID:       eventType.OwnerID,
			RecurringGroupID: groupID,
			SchedulingType:   eventType.SchedulingType,
		})
	}
	return records, nil
}

// TransformReschedule builds the canonical record for moving an existing
// booking. Identity, language and responses come from the stored booking;
// only the date/time fields change.
func (s *InputService) TransformReschedule(ctx context.Context, bookingUID string, input RescheduleBookingRequest) (*BookingRecord, error) {
	booking, err := s.bookings.GetByUIDWithAttendees(ctx, bookingUID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking with uid=%s not found", ErrNotFound, bookingUID)
	}
	if booking.EventTypeID == nil {
		return nil, fmt.Errorf("%w: booking with uid=%s is missing event type", ErrNotFound, bookingUID)
	}

	eventType, err := s.eventTypes.GetByIDWithOwnerAndTeam(ctx, *booking.EventTypeID)
	if err != nil {
		return nil, err
	}
	if eventType == nil {
		return nil, fmt.Errorf("%w: event type with id=%d not found", ErrNotFound, *booking.EventTypeID)
	}

	responses, err := parseBookingResponses(booking.Responses)
	if err != nil {
		return nil, err
	}

	attendee, ok := findAttendee(booking.Attendees, responses.Email)
	if !ok {
		return nil, fmt.Errorf("%w: attendee with email %s for booking with uid=%s not found",
			ErrNotFound, responses.Email, bookingUID)
	}

	start, err := attendeeStartTime(input.Start, attendee.TimeZone)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(eventType.Length) * time.Minute)

	carried := map[string]any{
		"name":  responses.Name,
		"email": responses.Email,
	}
	if responses.Guests != nil {
		carried["guests"] = responses.Guests
	}
	if input.ReschedulingReason != "" {
		carried["rescheduledReason"] = input.ReschedulingReason
	} else if responses.RescheduledReason != "" {
		carried["rescheduledReason"] = responses.RescheduledReason
	}

	metadata := map[string]any{}
	if len(booking.Metadata) > 0 {
		if err := json.Unmarshal(booking.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("%w: booking metadata: %v", ErrValidation, err)
		}
	}

	return &BookingRecord{
		Start:         start,
		End:           end,
		EventTypeID:   eventType.ID,
		EventTypeSlug: eventType.Slug,
		TimeZone:      attendee.TimeZone,
		Language:      attendee.Locale,
		Metadata:      metadata,
		Guests:        responses.Guests,
		Responses:     carried,
		Owner:         ownerIdentifier(eventType),
		HostUserID:    eventType.OwnerID,
	}, nil
}

// TransformCancel decides between a single-booking and a whole-series
// cancellation. A uid that matches a recurring-group id is not itself a
// bookable record's uid, so the first occurrence's uid is substituted.
func (s *InputService) TransformCancel(ctx context.Context, bookingUID string, input CancelBookingRequest) (CancelRecord, error) {
	record := CancelRecord{
		UID:                bookingUID,
		CancellationReason: input.CancellationReason,
	}

	group, err := s.bookings.GetByRecurringGroupID(ctx, bookingUID)
	if err != nil {
		return CancelRecord{}, err
	}
	if len(group) > 0 {
		record.AllRemainingBookings = true
		record.UID = group[0].UID
	}
	return record, nil
}

// TransformMarkAbsent is a pure mapping with no lookups or failure modes.
func (s *InputService) TransformMarkAbsent(input MarkAbsentRequest) AbsenceRecord {
	record := AbsenceRecord{NoShowHost: input.Host}
	for _, email := range input.Attendees {
		record.Attendees = append(record.Attendees, AttendeeAbsence{Email: email, NoShow: true})
	}
	return record
}

// TransformListFilters maps list query parameters onto repository filters
// and an optional sort.
func (s *InputService) TransformListFilters(query ListBookingsQuery) (repository.BookingFilters, *repository.BookingSort, error) {
	filters := repository.BookingFilters{
		AttendeeEmail: query.AttendeeEmail,
		AttendeeName:  query.AttendeeName,
		TeamIDs:       query.TeamIDs,
		EventTypeIDs:  query.EventTypeIDs,
	}

	if query.AfterStart != "" {
		t, err := time.Parse(time.RFC3339, query.AfterStart)
		if err != nil {
			return repository.BookingFilters{}, nil, fmt.Errorf("%w: invalid afterStart %q", ErrValidation, query.AfterStart)
		}
		filters.AfterStart = &t
	}
	if query.BeforeEnd != "" {
		t, err := time.Parse(time.RFC3339, query.BeforeEnd)
		if err != nil {
			return repository.BookingFilters{}, nil, fmt.Errorf("%w: invalid beforeEnd %q", ErrValidation, query.BeforeEnd)
		}
		filters.BeforeEnd = &t
	}
	if len(filters.TeamIDs) == 0 && query.TeamID != 0 {
		filters.TeamIDs = []int64{query.TeamID}
	}
	if len(filters.EventTypeIDs) == 0 && query.EventTypeID != 0 {
		filters.EventTypeIDs = []int64{query.EventTypeID}
	}

	if query.SortStart == "" && query.SortEnd == "" && query.SortCreated == "" {
		return filters, nil, nil
	}

	sort := &repository.BookingSort{}
	if query.SortStart != "" {
		sort.SortStart = &query.SortStart
	}
	if query.SortEnd != "" {
		sort.SortEnd = &query.SortEnd
	}
	if query.SortCreated != "" {
		sort.SortCreated = &query.SortCreated
	}
	return filters, sort, nil
}

func findAttendee(attendees []domain.Attendee, email string) (domain.Attendee, bool) {
	for _, a := range attendees {
		if a.Email == email {
			return a, true
		}
	}
	return domain.Attendee{}, false
}
