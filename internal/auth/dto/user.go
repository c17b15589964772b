package dto

import (
	"time"

	"github.com/edulift/auth-service/internal/auth/domain"
)

// UserResponse is the only shape of a user that leaves this service. Fields
// are allow-listed here; the password hash has no field to leak through.
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	BannedUntil   *time.Time `json:"banned_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToUserResponse maps the internal credential record to its safe external
// view. EmailVerified derives from the confirmation timestamp and IsActive
// from the soft-delete and ban markers.
func ToUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailConfirmedAt != nil,
		IsActive:      user.IsActive(time.Now()),
		BannedUntil:   user.BannedUntil,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

type SessionOutput struct {
	ID             string    `json:"id"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	DeviceType     string    `json:"device_type"`
	Browser        string    `json:"browser"`
	OS             string    `json:"os"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ToSessionOutput strips the token material from a session before it is listed
// back to its owner.
func ToSessionOutput(s *domain.Session) SessionOutput {
	return SessionOutput{
		ID:             s.ID,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		DeviceType:     s.DeviceType,
		Browser:        s.Browser,
		OS:             s.OS,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
	}
}
