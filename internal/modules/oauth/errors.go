package oauth

import "errors"

var (
	ErrInvalidToken  = errors.New("invalid access token")
	ErrUnknownOwner  = errors.New("token owner not found")
	ErrUnknownClient = errors.New("oauth client not found")
)
