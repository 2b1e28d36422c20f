package auth

import "errors"

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrMissingSubject = errors.New("identity has no subject")
	ErrMissingSecret  = errors.New("signing secret is empty")
)
