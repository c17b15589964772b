package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulift/auth-service/internal/auth/domain"
	"github.com/edulift/auth-service/internal/auth/service"
	autherror "github.com/edulift/auth-service/internal/errors"
	"github.com/edulift/auth-service/internal/mocks"
	authconstant "github.com/edulift/auth-service/pkg/constant"
)

type recoveryMocks struct {
	users    *mocks.MockUserRepository
	tokens   *mocks.MockResetTokenRepository
	sessions *mocks.MockSessionRepository
	notifier *mocks.MockNotifier
}

func newRecoveryService(ctrl *gomock.Controller) (*service.RecoveryService, recoveryMocks) {
	m := recoveryMocks{
		users:    mocks.NewMockUserRepository(ctrl),
		tokens:   mocks.NewMockResetTokenRepository(ctrl),
		sessions: mocks.NewMockSessionRepository(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}

	return service.NewRecoveryService(m.users, m.tokens, m.sessions, m.notifier), m
}

func TestRecoveryService_RequestReset_KnownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	user := &domain.User{ID: "user-id", Email: "test@example.com"}

	var stored *domain.PasswordResetToken
	var dispatched string

	// Mock expectations
	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.tokens.EXPECT().InvalidateActiveByUserID(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	m.tokens.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tok *domain.PasswordResetToken) error {
			stored = tok
			return nil
		})
	m.notifier.EXPECT().SendPasswordReset(gomock.Any(), user.Email, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, plain string) error {
			dispatched = plain
			return nil
		})

	message, err := s.RequestReset(context.Background(), user.Email)

	require.NoError(t, err)
	assert.Equal(t, authconstant.GenericResetMessage, message)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Nil(t, stored.UsedAt)
	// The store holds a hash, the recipient gets the plaintext.
	assert.NotEmpty(t, dispatched)
	assert.NotEqual(t, dispatched, stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64)
	assert.WithinDuration(t, time.Now().Add(authconstant.ResetTokenTTL), stored.ExpiresAt, time.Minute)
}

func TestRecoveryService_RequestReset_UnknownEmailSameMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	// No token is issued and nothing is dispatched, but the caller cannot tell.
	m.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

	message, err := s.RequestReset(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	assert.Equal(t, authconstant.GenericResetMessage, message)
}

func TestRecoveryService_RequestReset_NotifierFailureStillSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	user := &domain.User{ID: "user-id", Email: "test@example.com"}

	// Mock expectations
	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.tokens.EXPECT().InvalidateActiveByUserID(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	m.tokens.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	m.notifier.EXPECT().SendPasswordReset(gomock.Any(), user.Email, gomock.Any()).
		Return(errors.New("broker down"))

	message, err := s.RequestReset(context.Background(), user.Email)

	assert.NoError(t, err)
	assert.Equal(t, authconstant.GenericResetMessage, message)
}

func TestRecoveryService_RequestReset_InvalidateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	user := &domain.User{ID: "user-id", Email: "test@example.com"}
	expectedError := errors.New("database error")

	// Mock expectations
	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.tokens.EXPECT().InvalidateActiveByUserID(gomock.Any(), user.ID, gomock.Any()).Return(expectedError)

	message, err := s.RequestReset(context.Background(), user.Email)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to invalidate previous reset tokens")
	assert.Empty(t, message)
}

func TestRecoveryService_ValidateToken(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Minute)

	tests := []struct {
		name      string
		token     *domain.PasswordResetToken
		wantValid bool
	}{
		{
			name:      "valid",
			token:     &domain.PasswordResetToken{ID: "t1", UserID: "user-id", ExpiresAt: now.Add(time.Hour)},
			wantValid: true,
		},
		{
			name:      "absent",
			token:     nil,
			wantValid: false,
		},
		{
			name:      "already used",
			token:     &domain.PasswordResetToken{ID: "t1", UserID: "user-id", ExpiresAt: now.Add(time.Hour), UsedAt: &used},
			wantValid: false,
		},
		{
			name:      "expired",
			token:     &domain.PasswordResetToken{ID: "t1", UserID: "user-id", ExpiresAt: now.Add(-time.Hour)},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newRecoveryService(ctrl)

			m.tokens.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(tt.token, nil)

			out, err := s.ValidateToken(context.Background(), "plain-token")

			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, out.Valid)
			if tt.wantValid {
				assert.Equal(t, "user-id", out.UserID)
			} else {
				assert.Empty(t, out.UserID)
			}
		})
	}
}

func TestRecoveryService_ResetPassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	token := &domain.PasswordResetToken{
		ID:        "token-id",
		UserID:    "user-id",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	user := &domain.User{ID: "user-id", Email: "test@example.com", PasswordHash: "old-hash"}

	var newHash string

	// Mock expectations: password updated, token burned, every session revoked.
	m.tokens.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(token, nil)
	m.users.EXPECT().GetByID(gomock.Any(), token.UserID).Return(user, nil)
	m.users.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, hash string) error {
			newHash = hash
			return nil
		})
	m.tokens.EXPECT().MarkUsed(gomock.Any(), token.ID, gomock.Any()).Return(nil)
	m.sessions.EXPECT().DeleteByUserID(gomock.Any(), user.ID).Return(nil)

	err := s.ResetPassword(context.Background(), "plain-token", "new-password-123")

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password-123")))
}

func TestRecoveryService_ResetPassword_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	// Mock expectations
	m.tokens.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(nil, nil)

	err := s.ResetPassword(context.Background(), "bogus-token", "new-password-123")

	assert.Error(t, err)
	assert.Equal(t, autherror.ErrResetTokenInvalid, err)
}

func TestRecoveryService_ResetPassword_UsedTokenRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	used := time.Now().Add(-time.Minute)
	token := &domain.PasswordResetToken{
		ID:        "token-id",
		UserID:    "user-id",
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &used,
	}

	// A second redemption of the same token must fail.
	m.tokens.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(token, nil)

	err := s.ResetPassword(context.Background(), "plain-token", "new-password-123")

	assert.Error(t, err)
	assert.Equal(t, autherror.ErrResetTokenInvalid, err)
}

func TestRecoveryService_ResetPassword_ExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	token := &domain.PasswordResetToken{
		ID:        "token-id",
		UserID:    "user-id",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	// Mock expectations
	m.tokens.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(token, nil)

	err := s.ResetPassword(context.Background(), "plain-token", "new-password-123")

	assert.Error(t, err)
	assert.Equal(t, autherror.ErrResetTokenInvalid, err)
}

func TestRecoveryService_ResetPassword_UserGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	token := &domain.PasswordResetToken{
		ID:        "token-id",
		UserID:    "user-id",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	// Mock expectations
	m.tokens.EXPECT().GetByTokenHash(gomock.Any(), gomock.Any()).Return(token, nil)
	m.users.EXPECT().GetByID(gomock.Any(), token.UserID).Return(nil, nil)

	err := s.ResetPassword(context.Background(), "plain-token", "new-password-123")

	assert.Error(t, err)
	assert.Equal(t, autherror.ErrUserNotFound, err)
}

func TestRecoveryService_CleanExpiredTokens_DefaultRetention(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newRecoveryService(ctrl)

	// Mock expectations
	m.tokens.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cutoff time.Time) (int64, error) {
			expected := time.Now().AddDate(0, 0, -authconstant.ResetTokenRetentionDays)
			assert.WithinDuration(t, expected, cutoff, time.Minute)
			return 3, nil
		})

	removed, err := s.CleanExpiredTokens(context.Background(), 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
