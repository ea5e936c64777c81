package auth

import "errors"

var (
	ErrMissingSecret = errors.New("JWT secret is not set")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrForbidden     = errors.New("forbidden")

	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)
