package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edulift/auth-service/internal/auth/domain"
)

const sessionColumns = `id, user_id, tenant_id, session_token, refresh_token_hash,
	ip_address, user_agent, device_type, browser, os,
	created_at, last_activity_at, expires_at, is_active`

type SessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, s.ID, s.UserID, s.TenantID, s.SessionToken, s.RefreshTokenHash,
		s.IPAddress, s.UserAgent, s.DeviceType, s.Browser, s.OS,
		s.CreatedAt, s.LastActivityAt, s.ExpiresAt, s.IsActive)

	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1 LIMIT 1;`
	return r.scanSession(r.db.QueryRow(ctx, query, id))
}

func (r *SessionRepository) GetByRefreshTokenHash(ctx context.Context, userID, tokenHash string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 AND refresh_token_hash = $2 LIMIT 1;`
	return r.scanSession(r.db.QueryRow(ctx, query, userID, tokenHash))
}

func (r *SessionRepository) GetOldestByUserID(ctx context.Context, userID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1;`
	return r.scanSession(r.db.QueryRow(ctx, query, userID))
}

func (r *SessionRepository) scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.TenantID, &s.SessionToken, &s.RefreshTokenHash,
		&s.IPAddress, &s.UserAgent, &s.DeviceType, &s.Browser, &s.OS,
		&s.CreatedAt, &s.LastActivityAt, &s.ExpiresAt, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &s, nil
}

func (r *SessionRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_sessions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	return count, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_sessions
		SET refresh_token_hash = $2, last_activity_at = $3, expires_at = $4, is_active = $5
		WHERE id = $1
	`, s.ID, s.RefreshTokenHash, s.LastActivityAt, s.ExpiresAt, s.IsActive)

	return err
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	return err
}

func (r *SessionRepository) DeleteByIDAndUserID(ctx context.Context, id, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID)
	return err
}

func (r *SessionRepository) DeleteExpiredByUserID(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1 AND expires_at < $2`, userID, now)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *SessionRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE user_id = $1 ORDER BY last_activity_at DESC;`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		err := rows.Scan(&s.ID, &s.UserID, &s.TenantID, &s.SessionToken, &s.RefreshTokenHash,
			&s.IPAddress, &s.UserAgent, &s.DeviceType, &s.Browser, &s.OS,
			&s.CreatedAt, &s.LastActivityAt, &s.ExpiresAt, &s.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
