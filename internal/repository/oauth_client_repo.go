package repository

import (
	"context"
	"errors"
	"time"

	"calbook/internal/domain"

	"gorm.io/gorm"
)

type OAuthClientRepository struct {
	db *gorm.DB
}

func NewOAuthClientRepository(db *gorm.DB) *OAuthClientRepository {
	return &OAuthClientRepository{db: db}
}

type oauthClientModel struct {
	ID                    string    `gorm:"column:id;primaryKey"`
	Name                  string    `gorm:"column:name"`
	SecretHash            string    `gorm:"column:secret_hash"`
	BookingRedirectURI    *string   `gorm:"column:booking_redirect_uri"`
	CancelRedirectURI     *string   `gorm:"column:cancel_redirect_uri"`
	RescheduleRedirectURI *string   `gorm:"column:reschedule_redirect_uri"`
	AreEmailsEnabled      bool      `gorm:"column:are_emails_enabled"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func (oauthClientModel) TableName() string { return "oauth_clients" }

func toDomainOAuthClient(m oauthClientModel) *domain.OAuthClient {
	return &domain.OAuthClient{
		ID:                    m.ID,
		Name:                  m.Name,
		SecretHash:            m.SecretHash,
		BookingRedirectURI:    m.BookingRedirectURI,
		CancelRedirectURI:     m.CancelRedirectURI,
		RescheduleRedirectURI: m.RescheduleRedirectURI,
		AreEmailsEnabled:      m.AreEmailsEnabled,
		CreatedAt:             m.CreatedAt,
	}
}

func (r *OAuthClientRepository) Create(ctx context.Context, c *domain.OAuthClient) error {
	m := oauthClientModel{
		ID:                    c.ID,
		Name:                  c.Name,
		SecretHash:            c.SecretHash,
		BookingRedirectURI:    c.BookingRedirectURI,
		CancelRedirectURI:     c.CancelRedirectURI,
		RescheduleRedirectURI: c.RescheduleRedirectURI,
		AreEmailsEnabled:      c.AreEmailsEnabled,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	c.CreatedAt = m.CreatedAt
	return nil
}

// GetByID returns (nil, nil) when no client with the id is registered.
func (r *OAuthClientRepository) GetByID(ctx context.Context, id string) (*domain.OAuthClient, error) {
	var m oauthClientModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainOAuthClient(m), nil
}
