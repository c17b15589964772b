package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edulift/auth-service/internal/auth/domain"
	"github.com/edulift/auth-service/internal/auth/dto"
	autherror "github.com/edulift/auth-service/internal/errors"
)

// SessionService owns the session lifecycle: creation under a hard concurrency
// cap with FIFO eviction, lazy expiry on validation, and revocation. Session
// counts are recomputed from the store on every call; concurrent logins racing
// on the cap can transiently exceed it, which self-corrects on the next login.
type SessionService struct {
	sessions          domain.SessionRepository
	maxActiveSessions int
}

func NewSessionService(sessions domain.SessionRepository, maxActiveSessions int) *SessionService {
	return &SessionService{
		sessions:          sessions,
		maxActiveSessions: maxActiveSessions,
	}
}

// CreateSession opens a session for the user. Already-expired sessions are
// reaped first; if the user is still at the cap, the single oldest session by
// created_at is evicted (FIFO, not LRU). The refresh token is stored hashed.
func (s *SessionService) CreateSession(ctx context.Context, input dto.CreateSessionInput) (*domain.Session, error) {
	now := time.Now()

	if err := s.sessions.DeleteExpiredByUserID(ctx, input.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to clean expired sessions: %w", err)
	}

	count, err := s.sessions.CountByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}

	if count >= s.maxActiveSessions {
		oldest, err := s.sessions.GetOldestByUserID(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find oldest session: %w", err)
		}
		if oldest != nil {
			if err := s.sessions.DeleteByID(ctx, oldest.ID); err != nil {
				return nil, fmt.Errorf("failed to evict oldest session: %w", err)
			}
		}
	}

	sessionToken, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		TenantID:         input.TenantID,
		SessionToken:     sessionToken,
		RefreshTokenHash: hashToken(input.RefreshTokenPlain),
		IPAddress:        input.IPAddress,
		UserAgent:        input.UserAgent,
		DeviceType:       detectDeviceType(input.UserAgent),
		Browser:          detectBrowser(input.UserAgent),
		OS:               detectOS(input.UserAgent),
		CreatedAt:        now,
		LastActivityAt:   now,
		ExpiresAt:        input.ExpiresAt,
		IsActive:         true,
	}

	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession fetches the session by id. An absent session returns
// (nil, nil). An expired one is deleted on the spot and also returns
// (nil, nil), so repeated calls stay idempotent. A live session gets its
// last_activity_at bumped.
func (s *SessionService) ValidateSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	now := time.Now()
	if session.IsExpired(now) {
		if err := s.sessions.DeleteByID(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, nil
	}

	session.LastActivityAt = now
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session activity: %w", err)
	}

	return session, nil
}

// RevokeSession deletes the session scoped to its owner. Zero rows affected
// means either the session does not exist or it belongs to someone else; the
// two cases are deliberately indistinguishable.
func (s *SessionService) RevokeSession(ctx context.Context, id, userID string) error {
	affected, err := s.sessions.DeleteByIDAndUserID(ctx, id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return autherror.ErrSessionNotFound
	}

	return nil
}

// RevokeAllSessions deletes every session for the user. Idempotent.
func (s *SessionService) RevokeAllSessions(ctx context.Context, userID string) error {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// CleanExpiredSessions bulk-deletes expired sessions and returns how many were
// removed. Safe to call on a schedule; correctness does not depend on it
// because validation expires lazily.
func (s *SessionService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

// GetUserActiveSessions lists the user's sessions, most recently active first.
func (s *SessionService) GetUserActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.sessions.ListByUserID(ctx, userID)
}
