package service

//go:generate mockgen -destination=../../mocks/mock_repositories.go -package=mocks github.com/edulift/auth-service/internal/auth/domain UserRepository,TenantRepository,ProfileRepository,AttemptRepository,SessionRepository,ResetTokenRepository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulift/auth-service/config"
	"github.com/edulift/auth-service/internal/auth/domain"
	"github.com/edulift/auth-service/internal/auth/dto"
	autherror "github.com/edulift/auth-service/internal/errors"
	authconstant "github.com/edulift/auth-service/pkg/constant"
)

// UserService coordinates registration and login across the security monitor,
// credential store, and session manager. A login passes the rate-limit gate
// first, then credential verification, then session creation; every failure
// short-circuits and is recorded in the attempt log.
type UserService struct {
	users        domain.UserRepository
	tenants      domain.TenantRepository
	profiles     domain.ProfileRepository
	security     *SecurityService
	sessions     *SessionService
	tokenService TokenGenerator
	cfg          *config.Config
}

func NewUserService(users domain.UserRepository, tenants domain.TenantRepository,
	profiles domain.ProfileRepository, security *SecurityService, sessions *SessionService,
	tokenService TokenGenerator, cfg *config.Config) *UserService {
	return &UserService{
		users:        users,
		tenants:      tenants,
		profiles:     profiles,
		security:     security,
		sessions:     sessions,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

// Register creates the credential, resolves the owning tenant, and creates the
// profile. The caller maps the returned record through dto.ToUserResponse; the
// internal record never leaves the service boundary unmapped.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	existingUser, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tenant, err := s.resolveMainTenant(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         authconstant.DefaultUserRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// The profile shares the user's UUID so foreign keys stay consistent.
	profile := &domain.Profile{
		ID:        user.ID,
		UserID:    user.ID,
		TenantID:  tenant.ID,
		Email:     user.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      user.Role,
		Status:    "active",
		CreatedAt: now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.security.LogAttempt(ctx, AttemptRecord{
		Email:     input.Email,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Success:   true,
	}); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) resolveMainTenant(ctx context.Context) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetActiveBySlug(ctx, s.cfg.MainTenantSlug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		tenant, err = s.tenants.GetOldestActive(ctx)
		if err != nil {
			return nil, err
		}
	}
	if tenant == nil {
		return nil, autherror.ErrNoActiveTenant
	}

	return tenant, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password share one generic error so responses cannot be used to enumerate
// accounts; rate-limited and inactive accounts deliberately disclose their
// reason.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*domain.User, *dto.LoginResult, error) {
	decision, err := s.security.CheckRateLimit(ctx, input.Email, input.IPAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if decision.IsBlocked {
		s.logFailure(ctx, input, "rate limited")
		return nil, nil, fmt.Errorf("%w: %s", autherror.ErrTooManyLoginAttempts, decision.Reason)
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		s.logFailure(ctx, input, "user not found")
		return nil, nil, autherror.ErrInvalidCredentials
	}

	if !user.IsActive(time.Now()) {
		s.logFailure(ctx, input, "account not active")
		return nil, nil, autherror.ErrAccountNotActive
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.logFailure(ctx, input, "invalid password")
		return nil, nil, autherror.ErrInvalidCredentials
	}

	if err := s.security.LogAttempt(ctx, AttemptRecord{
		Email:     input.Email,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Success:   true,
	}); err != nil {
		return nil, nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, autherror.ErrProfileNotFound
	}

	accessToken, refreshToken, _, err := s.tokenService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.CreateSession(ctx, dto.CreateSessionInput{
		UserID:            user.ID,
		TenantID:          profile.TenantID,
		RefreshTokenPlain: refreshToken,
		IPAddress:         input.IPAddress,
		UserAgent:         input.UserAgent,
		ExpiresAt:         time.Now().Add(s.tokenService.GetRefreshTokenExpiry()),
	})
	if err != nil {
		return nil, nil, err
	}

	return user, &dto.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    authconstant.DefaultTokenType,
		ExpiresIn:    int(s.tokenService.GetAccessTokenExpiry().Seconds()),
		SessionID:    session.ID,
	}, nil
}

func (s *UserService) logFailure(ctx context.Context, input dto.LoginInput, reason string) {
	// Attempt-log writes on the failure path are best effort; the login error
	// itself must still reach the caller.
	if err := s.security.LogAttempt(ctx, AttemptRecord{
		Email:         input.Email,
		IPAddress:     input.IPAddress,
		UserAgent:     input.UserAgent,
		Success:       false,
		FailureReason: reason,
	}); err != nil {
		log.Printf("warn: failed to record failed login attempt for %s: %v", input.Email, err)
	}
}

// Refresh rotates the token pair bound to the session that holds the hash of
// the presented refresh token.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.LoginResult, error) {
	claims, err := s.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, autherror.ErrInvalidRefreshToken
	}

	user, err := s.ValidateUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrInvalidRefreshToken
	}

	session, err := s.sessions.sessions.GetByRefreshTokenHash(ctx, user.ID, hashToken(input.RefreshToken))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, autherror.ErrInvalidRefreshToken
	}

	now := time.Now()
	if session.IsExpired(now) {
		if err := s.sessions.sessions.DeleteByID(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, autherror.ErrInvalidRefreshToken
	}

	accessToken, refreshToken, _, err := s.tokenService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	session.RefreshTokenHash = hashToken(refreshToken)
	session.ExpiresAt = now.Add(s.tokenService.GetRefreshTokenExpiry())
	session.LastActivityAt = now
	if err := s.sessions.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return &dto.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    authconstant.DefaultTokenType,
		ExpiresIn:    int(s.tokenService.GetAccessTokenExpiry().Seconds()),
		SessionID:    session.ID,
	}, nil
}

// ValidateUser returns the credential by id if it is not soft-deleted;
// (nil, nil) otherwise. Used by request-time identity re-hydration.
func (s *UserService) ValidateUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.DeletedAt != nil {
		return nil, nil
	}

	return user, nil
}
