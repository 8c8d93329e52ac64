package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// AuthenticationHandler exposes login, refresh and logout endpoints.
type AuthenticationHandler struct {
	auth *service.AuthService
}

// NewAuthenticationHandler constructs handler.
func NewAuthenticationHandler(authService *service.AuthService) *AuthenticationHandler {
	return &AuthenticationHandler{auth: authService}
}

// Login handles POST /v1/authentication/login.
func (h *AuthenticationHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload.")
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}

	session, err := h.auth.LoginUser(c.Context(), req.Email, req.Password, *req.PersistSession)
	if err != nil {
		return err
	}

	c.Set("Set-Cookie", session.RefreshCookie)
	return c.JSON(dto.AccessTokenResponse{AccessToken: session.AccessToken})
}

// AdminLogin handles POST /v1/authentication/admin/login.
func (h *AuthenticationHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload.")
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}

	session, err := h.auth.LoginAdmin(c.Context(), req.Email, req.Password, *req.PersistSession)
	if err != nil {
		return err
	}

	c.Set("Set-Cookie", session.RefreshCookie)
	return c.JSON(dto.AccessTokenResponse{AccessToken: session.AccessToken})
}

// RefreshAccessToken handles POST /v1/authentication/refresh-access-token.
// The gate has already verified the refresh-class cookie credential.
func (h *AuthenticationHandler) RefreshAccessToken(c *fiber.Ctx) error {
	payload, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
	}

	var req dto.RefreshRequest
	_ = c.BodyParser(&req)

	session, err := h.auth.Refresh(c.Context(), payload, req.PersistSession)
	if err != nil {
		return err
	}

	c.Set("Set-Cookie", session.RefreshCookie)
	return c.JSON(dto.AccessTokenResponse{AccessToken: session.AccessToken})
}

// Logout handles POST /v1/authentication/logout. Revokes every outstanding
// token for the principal and clears the refresh cookie.
func (h *AuthenticationHandler) Logout(c *fiber.Ctx) error {
	payload, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
	}

	if err := h.auth.Logout(c.Context(), payload); err != nil {
		return err
	}

	c.Set("Set-Cookie", h.auth.ClearRefreshCookie())
	return c.SendStatus(http.StatusNoContent)
}

// BearerToken extracts the raw credential from the Authorization header.
// Used by the validate endpoint to compare the presented token against the
// stored single-use value.
func BearerToken(c *fiber.Ctx) string {
	authorization := c.Get("Authorization")
	if !strings.HasPrefix(authorization, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authorization, "Bearer ")
}
