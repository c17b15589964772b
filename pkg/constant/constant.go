package constant

import "time"

const (
	DefaultUserRole  = "student"
	DefaultTokenType = "Bearer"
)

// Rate limiting. Failed-attempt counts are always recomputed over the trailing
// window from the attempt log; the block duration is informational (the block
// lifts when the window ages out, nothing is stored).
const (
	MaxFailuresPerEmail    = 5
	MaxFailuresPerIP       = 10
	RateLimitWindowMinutes = 15
	BlockDurationMinutes   = 30

	// BruteForceThreshold is the stricter alerting heuristic, independent of
	// the login-blocking threshold above.
	BruteForceThreshold = 10
)

const (
	DefaultMaxActiveSessions = 5

	ResetTokenTTL           = time.Hour
	ResetTokenRetentionDays = 7
)

// GenericResetMessage is returned by the password recovery flow whether or not
// the email exists, so responses cannot be used to enumerate accounts.
const GenericResetMessage = "If the email exists, you will receive instructions to reset your password"
