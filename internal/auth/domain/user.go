package domain

import "time"

// User is the internal credential record. It carries the password hash and is
// never returned to callers directly; responses go through dto.ToUserResponse.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	Role             string
	EmailConfirmedAt *time.Time
	BannedUntil      *time.Time
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive reports whether the account can authenticate: not soft-deleted and
// not under a ban that is still in the future.
func (u *User) IsActive(now time.Time) bool {
	if u.DeletedAt != nil {
		return false
	}
	if u.BannedUntil != nil && u.BannedUntil.After(now) {
		return false
	}
	return true
}

type Tenant struct {
	ID        string
	Slug      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Profile shares its ID with the owning user so foreign keys stay consistent.
type Profile struct {
	ID            string
	UserID        string
	TenantID      string
	Email         string
	FirstName     string
	LastName      string
	Role          string
	Status        string
	EmailVerified bool
	CreatedAt     time.Time
}
