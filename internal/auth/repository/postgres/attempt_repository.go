package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edulift/auth-service/internal/auth/domain"
)

// AttemptRepository appends to and aggregates over the auth_attempts log.
// Rows are never updated or deleted here; retention cleanup lives elsewhere.
type AttemptRepository struct {
	db DB
}

func NewAttemptRepository(db DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Insert(ctx context.Context, a *domain.AuthAttempt) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_attempts (id, email, ip_address, user_agent, success, failure_reason, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Email, a.IPAddress, a.UserAgent, a.Success, a.FailureReason, a.AttemptedAt)

	return err
}

func (r *AttemptRepository) CountFailuresByEmailSince(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM auth_attempts
		WHERE email = $1 AND success = false AND attempted_at > $2
	`, email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed attempts by email: %w", err)
	}

	return count, nil
}

func (r *AttemptRepository) CountFailuresByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM auth_attempts
		WHERE ip_address = $1 AND success = false AND attempted_at > $2
	`, ip, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed attempts by ip: %w", err)
	}

	return count, nil
}
