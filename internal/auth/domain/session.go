package domain

import "time"

// Session binds a user to a live authenticated context. The refresh token is
// stored as a SHA-256 hash; the plaintext only ever travels back to the client.
type Session struct {
	ID               string
	UserID           string
	TenantID         string
	SessionToken     string
	RefreshTokenHash string
	IPAddress        string
	UserAgent        string
	DeviceType       string
	Browser          string
	OS               string
	CreatedAt        time.Time
	LastActivityAt   time.Time
	ExpiresAt        time.Time
	IsActive         bool
}

// IsExpired reports whether the session's own expiry has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// AuthAttempt is an append-only record of one authentication attempt. Rows are
// never updated; rate-limit decisions are recomputed from them on every call.
type AuthAttempt struct {
	ID            string
	Email         string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	AttemptedAt   time.Time
}

// PasswordResetToken is a single-use recovery artifact. The plaintext token is
// dispatched out of band; only its SHA-256 hash is persisted. UsedAt is set
// exactly once, on redemption or when a newer token supersedes it.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// RateLimitDecision is the outcome of a point-in-time check over the attempt
// log. There is no stored unblock timestamp; the block lifts when the trailing
// window ages out.
type RateLimitDecision struct {
	IsBlocked bool
	Reason    string
}
