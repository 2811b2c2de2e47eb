package oauth

import (
	"context"

	"calbook/internal/domain"
)

// OAuthClientRepository resolves registered platform clients. A nil client
// with nil error means the id is unknown.
type OAuthClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.OAuthClient, error)
}

// UserRepository resolves platform users. A nil user with nil error means
// the id is unknown.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
