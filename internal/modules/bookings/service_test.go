package bookings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"calbook/internal/domain"
	"calbook/internal/modules/oauth"
	"calbook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Mock repositories
type MockEventTypeRepository struct {
	mock.Mock
}

func (m *MockEventTypeRepository) GetByIDWithOwnerAndTeam(ctx context.Context, id int64) (*domain.EventType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventType), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock

	nextID int64
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		m.nextID++ // simulate DB insert
		b.ID = m.nextID
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByUID(ctx context.Context, uid string) (*domain.Booking, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUIDWithAttendees(ctx context.Context, uid string) (*domain.Booking, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIDWithAttendees(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByRecurringGroupID(ctx context.Context, groupID string) ([]domain.Booking, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CancelByUID(ctx context.Context, uid, reason string) error {
	args := m.Called(ctx, uid, reason)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelByRecurringGroupID(ctx context.Context, groupID, reason string) error {
	args := m.Called(ctx, groupID, reason)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkRescheduled(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockBookingRepository) SetAbsences(ctx context.Context, uid string, host bool, attendeeEmails []string) error {
	args := m.Called(ctx, uid, host, attendeeEmails)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context, filters repository.BookingFilters, sort *repository.BookingSort) ([]domain.Booking, error) {
	args := m.Called(ctx, filters, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockOAuthFlow struct {
	mock.Mock
}

func (m *MockOAuthFlow) OwnerID(ctx context.Context, accessToken string) (int64, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOAuthFlow) ClientParams(ctx context.Context, clientID string) (oauth.PlatformParams, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(oauth.PlatformParams), args.Error(1)
}

func newTestService(flow OAuthFlow, eventTypes EventTypeRepository, bookings BookingRepository) *Service {
	log := zap.NewNop()
	input := NewInputService(flow, eventTypes, bookings, log)
	output := NewOutputService(bookings)
	return NewService(input, output, eventTypes, bookings, log)
}

func rawResponses(t *testing.T, responses map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(responses)
	assert.NoError(t, err)
	return raw
}

func TestService_Create_Single_Success(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	ownerID := int64(7)
	mockEventTypes.On("GetByIDWithOwnerAndTeam", mock.Anything, int64(5)).Return(&domain.EventType{
		ID:      5,
		Slug:    "intro-call",
		Title:   "Intro Call",
		Length:  30,
		OwnerID: &ownerID,
		Owner:   &domain.User{ID: ownerID, Username: "alice"},
	}, nil)
	mockBookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	result, err := service.Create(context.Background(), "", "", CreateBookingRequest{
		EventTypeID: 5,
		Start:       "2024-01-01T10:00:00Z",
		Attendee: AttendeeInput{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			TimeZone: "Europe/Vienna",
		},
		MeetingURL: "https://meet.example.com/abc",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result.Booking)
	view := *result.Booking

	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, 30, view.Duration)
	assert.NotEmpty(t, view.UID)
	assert.Equal(t, "2024-01-01T11:00:00+01:00", view.Start.Format(time.RFC3339))
	assert.Equal(t, "2024-01-01T11:30:00+01:00", view.End.Format(time.RFC3339))
	assert.Equal(t, "Jane Doe", view.Attendee.Name)
	assert.Equal(t, "jane@example.com", view.Attendee.Email)
	assert.Equal(t, "en", view.Attendee.Language)
	assert.Equal(t, "https://meet.example.com/abc", view.MeetingURL)
	mockBookings.AssertExpectations(t)
	// The event type is loaded once and reused by the transform.
	mockEventTypes.AssertNumberOfCalls(t, "GetByIDWithOwnerAndTeam", 1)
}

func TestService_Create_UnknownEventType(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	mockEventTypes.On("GetByIDWithOwnerAndTeam", mock.Anything, int64(404)).Return(nil, nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	_, err := service.Create(context.Background(), "", "", CreateBookingRequest{
		EventTypeID: 404,
		Start:       "2024-01-01T10:00:00Z",
		Attendee:    AttendeeInput{Name: "Jane", Email: "jane@example.com", TimeZone: "UTC"},
	})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Create_Recurring_Success(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	count := 2
	mockEventTypes.On("GetByIDWithOwnerAndTeam", mock.Anything, int64(9)).Return(&domain.EventType{
		ID:     9,
		Slug:   "weekly-sync",
		Length: 45,
		Owner:  &domain.User{ID: 1, Username: "alice"},
		Recurrence: &domain.RecurrenceRule{
			Freq:     domain.FreqWeekly,
			Interval: 2,
			Count:    &count,
		},
	}, nil)
	mockBookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	// RecurringViews re-reads every created occurrence by id.
	stored := func(id int64, start time.Time) *domain.Booking {
		return &domain.Booking{
			ID:               id,
			UID:              "occ-uid",
			Status:           domain.BookingAccepted,
			StartTime:        start,
			EndTime:          start.Add(45 * time.Minute),
			RecurringGroupID: "series-group",
			Responses:        json.RawMessage(`{"name":"Jane Doe","email":"jane@example.com"}`),
			Attendees:        []domain.Attendee{{Email: "jane@example.com", Name: "Jane Doe", TimeZone: "UTC"}},
		}
	}
	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	mockBookings.On("GetByIDWithAttendees", mock.Anything, int64(1)).Return(stored(1, first), nil)
	mockBookings.On("GetByIDWithAttendees", mock.Anything, int64(2)).Return(stored(2, first.AddDate(0, 0, 14)), nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	result, err := service.Create(context.Background(), "", "", CreateBookingRequest{
		EventTypeID: 9,
		Start:       "2024-01-01T10:00:00Z",
		Attendee: AttendeeInput{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			TimeZone: "UTC",
		},
	})

	assert.NoError(t, err)
	assert.Nil(t, result.Booking)
	assert.Len(t, result.Recurring, 2)
	assert.Equal(t, "series-group", result.Recurring[0].RecurringBookingUID)
	assert.Equal(t, "series-group", result.Recurring[1].RecurringBookingUID)
	assert.Equal(t, "accepted", result.Recurring[0].Status)
	assert.Equal(t, 14*24*time.Hour, result.Recurring[1].Start.Sub(result.Recurring[0].Start))
	mockBookings.AssertExpectations(t)
}

func TestService_Reschedule_Success(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	eventTypeID := int64(5)
	oldStart := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	old := &domain.Booking{
		ID:          11,
		UID:         "old-uid",
		EventTypeID: &eventTypeID,
		Status:      domain.BookingAccepted,
		StartTime:   oldStart,
		EndTime:     oldStart.Add(60 * time.Minute),
		Location:    "https://meet.example.com/old",
		Responses:   rawResponses(t, map[string]any{"name": "Jane Doe", "email": "jane@example.com"}),
		Attendees: []domain.Attendee{{
			Name: "Jane Doe", Email: "jane@example.com", TimeZone: "Europe/Vienna", Locale: "en",
		}},
	}

	mockBookings.On("GetByUID", mock.Anything, "old-uid").Return(old, nil)
	mockBookings.On("GetByUIDWithAttendees", mock.Anything, "old-uid").Return(old, nil)
	mockEventTypes.On("GetByIDWithOwnerAndTeam", mock.Anything, int64(5)).Return(&domain.EventType{
		ID:     5,
		Slug:   "intro-call",
		Length: 30,
		Owner:  &domain.User{ID: 7, Username: "alice"},
	}, nil)

	var replacement *domain.Booking
	mockBookings.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		replacement = args.Get(1).(*domain.Booking)
	}).Return(nil)
	mockBookings.On("MarkRescheduled", mock.Anything, "old-uid").Return(nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	view, err := service.Reschedule(context.Background(), "", "", "old-uid", RescheduleBookingRequest{
		Start:              "2024-01-20T14:00:00Z",
		ReschedulingReason: "host conflict",
	})

	assert.NoError(t, err)
	assert.NotNil(t, replacement)

	// The view reports the original booking's identity and timing.
	assert.Equal(t, "old-uid", view.UID)
	assert.Equal(t, "rescheduled", view.Status)
	assert.True(t, view.Start.Equal(oldStart))
	assert.Equal(t, 60, view.Duration)

	// The reason and the forward link come from the replacement.
	assert.Equal(t, "host conflict", view.ReschedulingReason)
	assert.Equal(t, replacement.UID, view.RescheduledToUID)
	assert.NotEqual(t, "old-uid", replacement.UID)
	assert.Equal(t, "old-uid", replacement.FromReschedule)
	assert.Equal(t, "https://meet.example.com/old", replacement.Location)
	mockBookings.AssertExpectations(t)
}

func TestService_Cancel_NotFound(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	mockBookings.On("GetByRecurringGroupID", mock.Anything, "missing-uid").Return([]domain.Booking{}, nil)
	mockBookings.On("GetByUID", mock.Anything, "missing-uid").Return(nil, nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	_, err := service.Cancel(context.Background(), "", "", "missing-uid", CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Cancel_RecurringGroup(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	start := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	occurrence := func(id int64, uid string) domain.Booking {
		return domain.Booking{
			ID:                 id,
			UID:                uid,
			Status:             domain.BookingCancelled,
			CancellationReason: "trip cancelled",
			StartTime:          start,
			EndTime:            start.Add(30 * time.Minute),
			RecurringGroupID:   "group-1",
			Responses:          json.RawMessage(`{"name":"Jane Doe","email":"jane@example.com"}`),
			Attendees:          []domain.Attendee{{Email: "jane@example.com", Name: "Jane Doe"}},
		}
	}
	group := []domain.Booking{occurrence(1, "occ-1"), occurrence(2, "occ-2")}

	mockBookings.On("GetByRecurringGroupID", mock.Anything, "group-1").Return(group, nil)
	mockBookings.On("CancelByRecurringGroupID", mock.Anything, "group-1", "trip cancelled").Return(nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	result, err := service.Cancel(context.Background(), "", "", "group-1", CancelBookingRequest{
		CancellationReason: "trip cancelled",
	})

	assert.NoError(t, err)
	assert.Len(t, result.Recurring, 2)
	assert.Equal(t, "cancelled", result.Recurring[0].Status)
	assert.Equal(t, "group-1", result.Recurring[0].RecurringBookingUID)
	mockBookings.AssertExpectations(t)
}

func TestService_MarkAbsent_Success(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := &domain.Booking{ID: 3, UID: "uid-3", Status: domain.BookingAccepted}
	updated := &domain.Booking{
		ID:         3,
		UID:        "uid-3",
		Status:     domain.BookingAccepted,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		NoShowHost: true,
		Responses:  json.RawMessage(`{"name":"Jane Doe","email":"jane@example.com"}`),
		Attendees:  []domain.Attendee{{Email: "jane@example.com", Name: "Jane Doe", NoShow: true}},
	}

	mockBookings.On("GetByUID", mock.Anything, "uid-3").Return(existing, nil)
	mockBookings.On("SetAbsences", mock.Anything, "uid-3", true, []string{"jane@example.com"}).Return(nil)
	mockBookings.On("GetByUIDWithAttendees", mock.Anything, "uid-3").Return(updated, nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	view, err := service.MarkAbsent(context.Background(), "uid-3", MarkAbsentRequest{
		Host:      true,
		Attendees: []string{"jane@example.com"},
	})

	assert.NoError(t, err)
	assert.True(t, view.AbsentHost)
	assert.True(t, view.Attendee.Absent)
	mockBookings.AssertExpectations(t)
}

func TestService_Get_Recurring(t *testing.T) {
	mockFlow := new(MockOAuthFlow)
	mockEventTypes := new(MockEventTypeRepository)
	mockBookings := new(MockBookingRepository)

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	mockBookings.On("GetByUIDWithAttendees", mock.Anything, "occ-uid").Return(&domain.Booking{
		ID:               8,
		UID:              "occ-uid",
		Status:           domain.BookingAccepted,
		StartTime:        start,
		EndTime:          start.Add(45 * time.Minute),
		RecurringGroupID: "group-9",
		Responses:        json.RawMessage(`{"name":"Jane Doe","email":"jane@example.com"}`),
		Attendees:        []domain.Attendee{{Email: "jane@example.com", Name: "Jane Doe"}},
	}, nil)

	service := newTestService(mockFlow, mockEventTypes, mockBookings)

	out, err := service.Get(context.Background(), "occ-uid")
	assert.NoError(t, err)

	view, ok := out.(RecurringBookingOutput)
	assert.True(t, ok)
	assert.Equal(t, "group-9", view.RecurringBookingUID)
	assert.Equal(t, 45, view.Duration)
}
