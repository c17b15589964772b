package dto

import "time"

// CreateSessionInput carries everything the session manager needs to open a
// session. RefreshTokenPlain is hashed before persistence and never stored.
type CreateSessionInput struct {
	UserID            string
	TenantID          string
	RefreshTokenPlain string
	IPAddress         string
	UserAgent         string
	ExpiresAt         time.Time
}
