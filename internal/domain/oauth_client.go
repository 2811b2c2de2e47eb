package domain

import "time"

// OAuthClient is a registered platform client. Redirect URIs are optional;
// consumers substitute empty strings when unset.
type OAuthClient struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	SecretHash            string    `json:"-"`
	BookingRedirectURI    *string   `json:"booking_redirect_uri,omitempty"`
	CancelRedirectURI     *string   `json:"cancel_redirect_uri,omitempty"`
	RescheduleRedirectURI *string   `json:"reschedule_redirect_uri,omitempty"`
	AreEmailsEnabled      bool      `json:"are_emails_enabled"`
	CreatedAt             time.Time `json:"created_at"`
}
