package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulift/auth-service/internal/auth/domain"
	repo "github.com/edulift/auth-service/internal/auth/repository/postgres"
)

// TestResetTokenRepository_Insert covers reset token persistence.
func TestResetTokenRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)
	ctx := context.Background()

	token := &domain.PasswordResetToken{
		ID:        "token-123",
		UserID:    "user-123",
		TokenHash: "token-hash",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO password_reset_tokens").
			WithArgs(token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.UsedAt, token.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := r.Insert(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO password_reset_tokens").
			WithArgs(token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.UsedAt, token.CreatedAt).
			WillReturnError(fmt.Errorf("db error"))

		err := r.Insert(ctx, token)
		assert.Error(t, err)
	})
}

// TestResetTokenRepository_GetByTokenHash covers the hash lookup.
func TestResetTokenRepository_GetByTokenHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)
	ctx := context.Background()
	columns := []string{"id", "user_id", "token_hash", "expires_at", "used_at", "created_at"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id").
			WithArgs("token-hash").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("token-123", "user-123", "token-hash", time.Now().Add(time.Hour), nil, time.Now()))

		token, err := r.GetByTokenHash(ctx, "token-hash")
		require.NoError(t, err)
		assert.Equal(t, "token-123", token.ID)
		assert.Nil(t, token.UsedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id").
			WithArgs("missing-hash").
			WillReturnError(pgx.ErrNoRows)

		token, err := r.GetByTokenHash(ctx, "missing-hash")
		require.NoError(t, err)
		assert.Nil(t, token)
	})
}

// TestResetTokenRepository_Mutations covers the used_at stamping and the
// retention reap.
func TestResetTokenRepository_Mutations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewResetTokenRepository(mock)
	ctx := context.Background()
	now := time.Now()

	t.Run("MarkUsed", func(t *testing.T) {
		mock.ExpectExec("UPDATE password_reset_tokens").
			WithArgs("token-123", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := r.MarkUsed(ctx, "token-123", now)
		assert.NoError(t, err)
	})

	t.Run("InvalidateActiveByUserID", func(t *testing.T) {
		mock.ExpectExec("UPDATE password_reset_tokens").
			WithArgs("user-123", now).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))

		err := r.InvalidateActiveByUserID(ctx, "user-123", now)
		assert.NoError(t, err)
	})

	t.Run("DeleteOlderThan reports affected rows", func(t *testing.T) {
		cutoff := now.AddDate(0, 0, -7)
		mock.ExpectExec("DELETE FROM password_reset_tokens").
			WithArgs(cutoff).
			WillReturnResult(pgxmock.NewResult("DELETE", 4))

		removed, err := r.DeleteOlderThan(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)
	})
}
