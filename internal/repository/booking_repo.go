package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"calbook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BookingFilters narrows List results. Zero values mean "no filter".
type BookingFilters struct {
	AttendeeEmail string
	AttendeeName  string
	AfterStart    *time.Time
	BeforeEnd     *time.Time
	TeamIDs       []int64
	EventTypeIDs  []int64
}

// BookingSort holds optional sort directions ("asc"/"desc") per field.
type BookingSort struct {
	SortStart   *string
	SortEnd     *string
	SortCreated *string
}

type bookingModel struct {
	ID                 int64           `gorm:"column:id;primaryKey"`
	UID                string          `gorm:"column:uid;uniqueIndex:idx_bookings_uid"`
	UserID             *int64          `gorm:"column:user_id"`
	EventTypeID        *int64          `gorm:"column:event_type_id"`
	Status             string          `gorm:"column:status"`
	StartTime          time.Time       `gorm:"column:start_time"`
	EndTime            time.Time       `gorm:"column:end_time"`
	TimeZone           string          `gorm:"column:time_zone"`
	Location           *string         `gorm:"column:location"`
	Responses          json.RawMessage `gorm:"column:responses;type:jsonb"`
	Metadata           json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CancellationReason *string         `gorm:"column:cancellation_reason"`
	Rescheduled        bool            `gorm:"column:rescheduled"`
	FromReschedule     *string         `gorm:"column:from_reschedule"`
	RecurringGroupID   *string         `gorm:"column:recurring_group_id;index"`
	NoShowHost         bool            `gorm:"column:no_show_host"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`

	Attendees []attendeeModel `gorm:"foreignKey:BookingID"`
}

func (bookingModel) TableName() string { return "bookings" }

type attendeeModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	BookingID int64   `gorm:"column:booking_id;index"`
	Name      string  `gorm:"column:name"`
	Email     string  `gorm:"column:email;index"`
	TimeZone  string  `gorm:"column:time_zone"`
	Locale    *string `gorm:"column:locale"`
	NoShow    bool    `gorm:"column:no_show"`
}

func (attendeeModel) TableName() string { return "attendees" }

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:          m.ID,
		UID:         m.UID,
		UserID:      m.UserID,
		EventTypeID: m.EventTypeID,
		Status:      domain.BookingStatus(m.Status),
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		TimeZone:    m.TimeZone,
		Responses:   m.Responses,
		Metadata:    m.Metadata,
		Rescheduled: m.Rescheduled,
		NoShowHost:  m.NoShowHost,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Location != nil {
		b.Location = *m.Location
	}
	if m.CancellationReason != nil {
		b.CancellationReason = *m.CancellationReason
	}
	if m.FromReschedule != nil {
		b.FromReschedule = *m.FromReschedule
	}
	if m.RecurringGroupID != nil {
		b.RecurringGroupID = *m.RecurringGroupID
	}
	for _, a := range m.Attendees {
		b.Attendees = append(b.Attendees, toDomainAttendee(a))
	}
	return b
}

func toDomainAttendee(m attendeeModel) domain.Attendee {
	a := domain.Attendee{
		ID:        m.ID,
		BookingID: m.BookingID,
		Name:      m.Name,
		Email:     m.Email,
		TimeZone:  m.TimeZone,
		NoShow:    m.NoShow,
	}
	if m.Locale != nil {
		a.Locale = *m.Locale
	}
	return a
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:                 b.ID,
		UID:                b.UID,
		UserID:             b.UserID,
		EventTypeID:        b.EventTypeID,
		Status:             string(b.Status),
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		TimeZone:           b.TimeZone,
		Location:           optString(b.Location),
		Responses:          b.Responses,
		Metadata:           b.Metadata,
		CancellationReason: optString(b.CancellationReason),
		Rescheduled:        b.Rescheduled,
		FromReschedule:     optString(b.FromReschedule),
		RecurringGroupID:   optString(b.RecurringGroupID),
		NoShowHost:         b.NoShowHost,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	for _, a := range b.Attendees {
		m.Attendees = append(m.Attendees, attendeeModel{
			ID:        a.ID,
			BookingID: a.BookingID,
			Name:      a.Name,
			Email:     a.Email,
			TimeZone:  a.TimeZone,
			Locale:    optString(a.Locale),
			NoShow:    a.NoShow,
		})
	}
	return m
}

// Create inserts the booking together with its attendees.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByUID(ctx context.Context, uid string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Where("uid = ?", uid).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByUIDWithAttendees(ctx context.Context, uid string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Preload("Attendees").Where("uid = ?", uid).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByIDWithAttendees(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Preload("Attendees").First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// GetByRecurringGroupID returns all occurrences of a recurring booking,
// earliest first. Empty slice when the uid is not a group id.
func (r *BookingRepository) GetByRecurringGroupID(ctx context.Context, groupID string) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Preload("Attendees").
		Where("recurring_group_id = ?", groupID).
		Order("start_time ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) CancelByUID(ctx context.Context, uid, reason string) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": reason,
		}).Error
}

// CancelByRecurringGroupID cancels every not-yet-cancelled occurrence in the group.
func (r *BookingRepository) CancelByRecurringGroupID(ctx context.Context, groupID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("recurring_group_id = ? AND status <> ?", groupID, string(domain.BookingCancelled)).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": reason,
		}).Error
}

func (r *BookingRepository) MarkRescheduled(ctx context.Context, uid string) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("uid = ?", uid).
		Update("rescheduled", true).Error
}

// SetAbsences flags the host and/or the listed attendee emails as no-shows.
func (r *BookingRepository) SetAbsences(ctx context.Context, uid string, host bool, attendeeEmails []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingModel
		if err := tx.Where("uid = ?", uid).First(&m).Error; err != nil {
			return err
		}
		if host {
			if err := tx.Model(&bookingModel{}).Where("id = ?", m.ID).Update("no_show_host", true).Error; err != nil {
				return err
			}
		}
		if len(attendeeEmails) > 0 {
			if err := tx.Model(&attendeeModel{}).
				Where("booking_id = ? AND email IN ?", m.ID, attendeeEmails).
				Update("no_show", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BookingRepository) List(ctx context.Context, filters BookingFilters, sort *BookingSort) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&bookingModel{}).Preload("Attendees")

	if filters.AttendeeEmail != "" || filters.AttendeeName != "" {
		q = q.Joins("JOIN attendees ON attendees.booking_id = bookings.id")
		if filters.AttendeeEmail != "" {
			q = q.Where("attendees.email = ?", filters.AttendeeEmail)
		}
		if filters.AttendeeName != "" {
			q = q.Where("attendees.name = ?", filters.AttendeeName)
		}
	}
	if filters.AfterStart != nil {
		q = q.Where("bookings.start_time >= ?", *filters.AfterStart)
	}
	if filters.BeforeEnd != nil {
		q = q.Where("bookings.end_time <= ?", *filters.BeforeEnd)
	}
	if len(filters.EventTypeIDs) > 0 {
		q = q.Where("bookings.event_type_id IN ?", filters.EventTypeIDs)
	}
	if len(filters.TeamIDs) > 0 {
		q = q.Joins("JOIN event_types ON event_types.id = bookings.event_type_id").
			Where("event_types.team_id IN ?", filters.TeamIDs)
	}

	ordered := false
	if sort != nil {
		if sort.SortStart != nil {
			q = q.Order("bookings.start_time " + sqlDirection(*sort.SortStart))
			ordered = true
		}
		if sort.SortEnd != nil {
			q = q.Order("bookings.end_time " + sqlDirection(*sort.SortEnd))
			ordered = true
		}
		if sort.SortCreated != nil {
			q = q.Order("bookings.created_at " + sqlDirection(*sort.SortCreated))
			ordered = true
		}
	}
	if !ordered {
		q = q.Order("bookings.start_time ASC")
	}

	var ms []bookingModel
	if err := q.Distinct("bookings.*").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func sqlDirection(dir string) string {
	if dir == "desc" || dir == "DESC" {
		return "DESC"
	}
	return "ASC"
}
