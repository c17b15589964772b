package errors

import (
	"errors"
)

var (
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrAccountNotActive     = errors.New("account not active")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrSessionNotFound      = errors.New("session not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("user profile not found")
	ErrResetTokenInvalid    = errors.New("invalid or expired reset token")
	ErrNoActiveTenant       = errors.New("no active tenants in the system")
)
