package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulift/auth-service/internal/auth/domain"
	"github.com/edulift/auth-service/internal/auth/dto"
	autherror "github.com/edulift/auth-service/internal/errors"
	"github.com/edulift/auth-service/internal/notify"
	authconstant "github.com/edulift/auth-service/pkg/constant"
)

// RecoveryService runs the password recovery flow: single-use reset tokens,
// dispatched out of band, with global logout on redemption.
type RecoveryService struct {
	users    domain.UserRepository
	tokens   domain.ResetTokenRepository
	sessions domain.SessionRepository
	notifier notify.Notifier
}

func NewRecoveryService(users domain.UserRepository, tokens domain.ResetTokenRepository,
	sessions domain.SessionRepository, notifier notify.Notifier) *RecoveryService {
	return &RecoveryService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		notifier: notifier,
	}
}

// RequestReset issues a reset token for the email. The returned message is
// byte-identical whether or not the account exists; only the out-of-band
// dispatch differs. Issuing a new token retires every unused token the user
// still has.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return authconstant.GenericResetMessage, nil
	}

	now := time.Now()
	if err := s.tokens.InvalidateActiveByUserID(ctx, user.ID, now); err != nil {
		return "", fmt.Errorf("failed to invalidate previous reset tokens: %w", err)
	}

	plain, err := generateToken()
	if err != nil {
		return "", err
	}

	token := &domain.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hashToken(plain),
		ExpiresAt: now.Add(authconstant.ResetTokenTTL),
		CreatedAt: now,
	}

	if err := s.tokens.Insert(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	// Fire-and-forget: a dropped notification must not change the response,
	// or the flow would leak which emails exist.
	if err := s.notifier.SendPasswordReset(ctx, user.Email, plain); err != nil {
		log.Printf("warn: failed to dispatch password reset for user %s: %v", user.ID, err)
	}

	return authconstant.GenericResetMessage, nil
}

// ValidateToken checks a plaintext token: valid iff its hash is on record,
// not expired, and not yet used.
func (s *RecoveryService) ValidateToken(ctx context.Context, plainToken string) (*dto.TokenValidationOutput, error) {
	token, err := s.tokens.GetByTokenHash(ctx, hashToken(plainToken))
	if err != nil {
		return nil, err
	}

	if token == nil || token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return &dto.TokenValidationOutput{Valid: false}, nil
	}

	return &dto.TokenValidationOutput{Valid: true, UserID: token.UserID}, nil
}

// ResetPassword redeems a token: the credential gets the new password hash,
// the token is marked used, and every active session for the user is revoked.
func (s *RecoveryService) ResetPassword(ctx context.Context, plainToken, newPassword string) error {
	token, err := s.tokens.GetByTokenHash(ctx, hashToken(plainToken))
	if err != nil {
		return err
	}

	now := time.Now()
	if token == nil || token.UsedAt != nil || now.After(token.ExpiresAt) {
		return autherror.ErrResetTokenInvalid
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}

	if err := s.tokens.MarkUsed(ctx, token.ID, now); err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	// Global logout: a password change invalidates every live session.
	if err := s.sessions.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions after password reset: %w", err)
	}

	return nil
}

// CleanExpiredTokens reaps tokens older than the retention cutoff, used or
// not, and returns how many were removed.
func (s *RecoveryService) CleanExpiredTokens(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = authconstant.ResetTokenRetentionDays
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	return s.tokens.DeleteOlderThan(ctx, cutoff)
}
