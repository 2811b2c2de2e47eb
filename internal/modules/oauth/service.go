package oauth

import (
	"context"

	jwtsvc "calbook/internal/pkg/jwt"
)

// PlatformParams are the OAuth-client-derived parameters attached to every
// booking request made through a platform client.
type PlatformParams struct {
	ClientID      string
	CancelURL     string
	RescheduleURL string
	BookingURL    string
	EmailsEnabled bool
}

// DefaultPlatformParams is used whenever no client id is supplied or the
// client cannot be resolved: empty redirect URLs, platform emails disabled.
func DefaultPlatformParams() PlatformParams {
	return PlatformParams{}
}

// FlowService resolves access tokens and client ids for booking request
// enrichment. Callers treat both resolutions as best-effort.
type FlowService struct {
	clients OAuthClientRepository
	users   UserRepository
	tokens  *jwtsvc.Service
}

func NewFlowService(clients OAuthClientRepository, users UserRepository, tokens *jwtsvc.Service) *FlowService {
	return &FlowService{
		clients: clients,
		users:   users,
		tokens:  tokens,
	}
}

// OwnerID resolves a bearer access token to the owning user id.
func (s *FlowService) OwnerID(ctx context.Context, accessToken string) (int64, error) {
	claims, err := s.tokens.ValidateToken(accessToken)
	if err != nil {
		return 0, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUnknownOwner
	}
	return user.ID, nil
}

// ClientParams resolves a client id to its platform parameters. Unset
// redirect URIs come back as empty strings.
func (s *FlowService) ClientParams(ctx context.Context, clientID string) (PlatformParams, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return DefaultPlatformParams(), err
	}
	if client == nil {
		return DefaultPlatformParams(), ErrUnknownClient
	}

	params := PlatformParams{
		ClientID:      clientID,
		EmailsEnabled: client.AreEmailsEnabled,
	}
	if client.CancelRedirectURI != nil {
		params.CancelURL = *client.CancelRedirectURI
	}
	if client.RescheduleRedirectURI != nil {
		params.RescheduleURL = *client.RescheduleRedirectURI
	}
	if client.BookingRedirectURI != nil {
		params.BookingURL = *client.BookingRedirectURI
	}
	return params, nil
}
