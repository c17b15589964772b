package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/edulift/auth-service/internal/auth/dto"
	"github.com/edulift/auth-service/internal/auth/service"
	autherror "github.com/edulift/auth-service/internal/errors"
)

type AuthHandler struct {
	userService     *service.UserService
	sessionService  *service.SessionService
	recoveryService *service.RecoveryService
	tokenService    service.TokenGenerator
}

func NewAuthHandler(userService *service.UserService, sessionService *service.SessionService,
	recoveryService *service.RecoveryService, tokenService service.TokenGenerator) *AuthHandler {
	return &AuthHandler{
		userService:     userService,
		sessionService:  sessionService,
		recoveryService: recoveryService,
		tokenService:    tokenService,
	}
}

// statusFromError maps the service error taxonomy onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return fiber.StatusConflict
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrTooManyLoginAttempts),
		errors.Is(err, autherror.ErrAccountNotActive),
		errors.Is(err, autherror.ErrInvalidRefreshToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, autherror.ErrSessionNotFound),
		errors.Is(err, autherror.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, autherror.ErrResetTokenInvalid):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal server error"
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	user, err := h.userService.Register(c.Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ToUserResponse(user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	user, result, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":          dto.ToUserResponse(user),
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    result.TokenType,
		"expires_in":    result.ExpiresIn,
		"session_id":    result.SessionID,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	input.IPAddress = c.IP()
	input.UserAgent = string(c.Request().Header.UserAgent())

	result, err := h.userService.Refresh(c.Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	message, err := h.recoveryService.RequestReset(c.Context(), input.Email)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.recoveryService.ResetPassword(c.Context(), input.Token, input.NewPassword); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "password reset successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := c.Locals(localUserID).(string)

	user, err := h.userService.ValidateUser(c.Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": autherror.ErrUserNotFound.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.ToUserResponse(user))
}

func (h *AuthHandler) GetSessions(c *fiber.Ctx) error {
	userID := c.Locals(localUserID).(string)

	sessions, err := h.sessionService.GetUserActiveSessions(c.Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}

	out := make([]dto.SessionOutput, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.ToSessionOutput(&sessions[i]))
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *AuthHandler) RevokeSession(c *fiber.Ctx) error {
	userID := c.Locals(localUserID).(string)
	sessionID := c.Params("id")

	if err := h.sessionService.RevokeSession(c.Context(), sessionID, userID); err != nil {
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) RevokeAllSessions(c *fiber.Ctx) error {
	userID := c.Locals(localUserID).(string)

	if err := h.sessionService.RevokeAllSessions(c.Context(), userID); err != nil {
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

const localUserID = "userID"

// RequireAuth verifies the bearer access token and stashes the caller's user
// id for downstream handlers.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing or malformed token"})
		}

		claims, err := h.tokenService.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(localUserID, claims.UserID)

		return c.Next()
	}
}
