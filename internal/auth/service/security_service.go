package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edulift/auth-service/internal/auth/domain"
	authconstant "github.com/edulift/auth-service/pkg/constant"
)

// SecurityService derives rate-limit and brute-force decisions from the
// append-only attempt log. Nothing is cached in process: every check is a
// fresh aggregate over the trailing window, so decisions stay correct across
// concurrent service instances.
type SecurityService struct {
	attempts domain.AttemptRepository
}

func NewSecurityService(attempts domain.AttemptRepository) *SecurityService {
	return &SecurityService{attempts: attempts}
}

// AttemptRecord is the input for LogAttempt. The ID and timestamp are assigned
// on insert.
type AttemptRecord struct {
	Email         string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
}

// LogAttempt appends one attempt to the log.
func (s *SecurityService) LogAttempt(ctx context.Context, record AttemptRecord) error {
	attempt := &domain.AuthAttempt{
		ID:            uuid.NewString(),
		Email:         record.Email,
		IPAddress:     record.IPAddress,
		UserAgent:     record.UserAgent,
		Success:       record.Success,
		FailureReason: record.FailureReason,
		AttemptedAt:   time.Now(),
	}

	return s.attempts.Insert(ctx, attempt)
}

// CheckRateLimit blocks when the email has accrued too many failures in the
// trailing window, or, when an ip is supplied, when the ip has. The two
// conditions are evaluated independently and either blocks. The block is not
// stored anywhere; it lifts by itself once the window ages out.
func (s *SecurityService) CheckRateLimit(ctx context.Context, email, ip string) (domain.RateLimitDecision, error) {
	since := time.Now().Add(-authconstant.RateLimitWindowMinutes * time.Minute)

	emailFailures, err := s.attempts.CountFailuresByEmailSince(ctx, email, since)
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("failed to count failures by email: %w", err)
	}

	if emailFailures >= authconstant.MaxFailuresPerEmail {
		return domain.RateLimitDecision{
			IsBlocked: true,
			Reason: fmt.Sprintf("too many failed attempts for %s, blocked for %d minutes",
				email, authconstant.BlockDurationMinutes),
		}, nil
	}

	if ip != "" {
		ipFailures, err := s.attempts.CountFailuresByIPSince(ctx, ip, since)
		if err != nil {
			return domain.RateLimitDecision{}, fmt.Errorf("failed to count failures by ip: %w", err)
		}

		if ipFailures >= authconstant.MaxFailuresPerIP {
			return domain.RateLimitDecision{
				IsBlocked: true,
				Reason: fmt.Sprintf("too many failed attempts from this IP, blocked for %d minutes",
					authconstant.BlockDurationMinutes),
			}, nil
		}
	}

	return domain.RateLimitDecision{}, nil
}

// GetRecentFailures counts failed attempts for the email in the trailing
// window of the given length.
func (s *SecurityService) GetRecentFailures(ctx context.Context, email string, minutes int) (int, error) {
	if minutes <= 0 {
		minutes = authconstant.RateLimitWindowMinutes
	}

	return s.attempts.CountFailuresByEmailSince(ctx, email, time.Now().Add(-time.Duration(minutes)*time.Minute))
}

// GetRecentFailuresByIP counts failed attempts from the ip in the trailing
// window of the given length.
func (s *SecurityService) GetRecentFailuresByIP(ctx context.Context, ip string, minutes int) (int, error) {
	if minutes <= 0 {
		minutes = authconstant.RateLimitWindowMinutes
	}

	return s.attempts.CountFailuresByIPSince(ctx, ip, time.Now().Add(-time.Duration(minutes)*time.Minute))
}

// DetectBruteForce is a stricter heuristic for alerting, independent of the
// login-blocking threshold.
func (s *SecurityService) DetectBruteForce(ctx context.Context, email string) (bool, error) {
	count, err := s.GetRecentFailures(ctx, email, authconstant.RateLimitWindowMinutes)
	if err != nil {
		return false, err
	}

	return count > authconstant.BruteForceThreshold, nil
}
