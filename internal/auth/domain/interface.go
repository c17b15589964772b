package domain

import (
	"context"
	"time"
)

// UserRepository persists credentials. Lookups return (nil, nil) when the row
// does not exist; infrastructure failures come back as errors.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type TenantRepository interface {
	GetActiveBySlug(ctx context.Context, slug string) (*Tenant, error)
	GetOldestActive(ctx context.Context) (*Tenant, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
}

// AttemptRepository is the append-only attempt log plus the count queries the
// rate limiter recomputes its decisions from.
type AttemptRepository interface {
	Insert(ctx context.Context, attempt *AuthAttempt) error
	CountFailuresByEmailSince(ctx context.Context, email string, since time.Time) (int, error)
	CountFailuresByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
}

type SessionRepository interface {
	Insert(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	GetByRefreshTokenHash(ctx context.Context, userID, tokenHash string) (*Session, error)
	GetOldestByUserID(ctx context.Context, userID string) (*Session, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	Save(ctx context.Context, session *Session) error
	DeleteByID(ctx context.Context, id string) error
	// DeleteByIDAndUserID returns the number of rows removed so callers can
	// distinguish "deleted" from "absent or not yours" without revealing which.
	DeleteByIDAndUserID(ctx context.Context, id, userID string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpiredByUserID(ctx context.Context, userID string, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListByUserID(ctx context.Context, userID string) ([]Session, error)
}

type ResetTokenRepository interface {
	Insert(ctx context.Context, token *PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	// InvalidateActiveByUserID stamps used_at on every unused token for the
	// user, so issuing a new token retires all previous ones.
	InvalidateActiveByUserID(ctx context.Context, userID string, now time.Time) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
