package repository

import (
	"context"
	"encoding/json"
	"errors"

	"calbook/internal/domain"

	"gorm.io/gorm"
)

type EventTypeRepository struct {
	db *gorm.DB
}

func NewEventTypeRepository(db *gorm.DB) *EventTypeRepository {
	return &EventTypeRepository{db: db}
}

type eventTypeModel struct {
	ID             int64           `gorm:"column:id;primaryKey"`
	Slug           string          `gorm:"column:slug"`
	Title          string          `gorm:"column:title"`
	Length         int             `gorm:"column:length"`
	OwnerID        *int64          `gorm:"column:owner_id"`
	TeamID         *int64          `gorm:"column:team_id"`
	SchedulingType *string         `gorm:"column:scheduling_type"`
	RecurringEvent json.RawMessage `gorm:"column:recurring_event;type:jsonb"`

	Owner *userModel `gorm:"foreignKey:OwnerID"`
	Team  *teamModel `gorm:"foreignKey:TeamID"`
}

func (eventTypeModel) TableName() string { return "event_types" }

type teamModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Slug string `gorm:"column:slug;uniqueIndex"`
	Name string `gorm:"column:name"`
}

func (teamModel) TableName() string { return "teams" }

func toDomainEventType(m eventTypeModel) (*domain.EventType, error) {
	et := &domain.EventType{
		ID:      m.ID,
		Slug:    m.Slug,
		Title:   m.Title,
		Length:  m.Length,
		OwnerID: m.OwnerID,
		TeamID:  m.TeamID,
	}
	if m.SchedulingType != nil {
		et.SchedulingType = domain.SchedulingType(*m.SchedulingType)
	}
	if len(m.RecurringEvent) > 0 && string(m.RecurringEvent) != "null" {
		var rule domain.RecurrenceRule
		if err := json.Unmarshal(m.RecurringEvent, &rule); err != nil {
			return nil, err
		}
		et.Recurrence = &rule
	}
	if m.Owner != nil {
		u := toDomainUser(*m.Owner)
		et.Owner = &u
	}
	if m.Team != nil {
		et.Team = &domain.Team{ID: m.Team.ID, Slug: m.Team.Slug, Name: m.Team.Name}
	}
	return et, nil
}

func (r *EventTypeRepository) Create(ctx context.Context, et *domain.EventType) error {
	m := eventTypeModel{
		ID:      et.ID,
		Slug:    et.Slug,
		Title:   et.Title,
		Length:  et.Length,
		OwnerID: et.OwnerID,
		TeamID:  et.TeamID,
	}
	if et.SchedulingType != "" {
		st := string(et.SchedulingType)
		m.SchedulingType = &st
	}
	if et.Recurrence != nil {
		raw, err := json.Marshal(et.Recurrence)
		if err != nil {
			return err
		}
		m.RecurringEvent = raw
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	et.ID = m.ID
	return nil
}

func (r *EventTypeRepository) CreateTeam(ctx context.Context, t *domain.Team) error {
	m := teamModel{ID: t.ID, Slug: t.Slug, Name: t.Name}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	t.ID = m.ID
	return nil
}

// GetByIDWithOwnerAndTeam resolves an event type together with its owning
// user or team. Returns (nil, nil) when the id does not exist.
func (r *EventTypeRepository) GetByIDWithOwnerAndTeam(ctx context.Context, id int64) (*domain.EventType, error) {
	var m eventTypeModel
	tx := r.db.WithContext(ctx).Preload("Owner").Preload("Team").First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainEventType(m)
}
