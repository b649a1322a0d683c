package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidUserEntry    = errors.New("invalid dashboard user entry")
	ErrAccessDenied        = errors.New("insufficient permissions")
)
