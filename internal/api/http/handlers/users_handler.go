package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// UsersHandler exposes registration, listing and validation endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	users repository.UserRepository
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, users repository.UserRepository) *UsersHandler {
	return &UsersHandler{auth: authService, users: users}
}

// Create handles POST /v1/users. The response does not reveal whether the
// email was already registered.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload.")
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}

	if _, err := h.auth.RegisterUser(c.Context(), req.Name, req.Email, req.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status":  http.StatusOK,
		"message": "User successfully created.",
	})
}

// Index handles GET /v1/users. Admin only; the role gate runs before this.
func (h *UsersHandler) Index(c *fiber.Ctx) error {
	users, err := h.users.ListActive(c.Context())
	if err != nil {
		return err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// RequestValidationToken handles POST /v1/users/validation-token.
func (h *UsersHandler) RequestValidationToken(c *fiber.Ctx) error {
	var req dto.ValidationTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload.")
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}

	if _, err := h.auth.IssueValidationToken(c.Context(), req.Email, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"status": "validation_token_issued"},
	})
}

// Validate handles POST /v1/users/:id/validate. The gate verified the
// validation-class credential; a caller may only validate its own account.
func (h *UsersHandler) Validate(c *fiber.Ctx) error {
	payload, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.SubtypeDefault, "Access unauthorized.")
	}

	userID := c.Params("id")
	if payload.ID != userID {
		return apperrors.NewForbidden(apperrors.SubtypeGeneric, "Access forbidden.")
	}

	if err := h.auth.ValidateUser(c.Context(), userID, BearerToken(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"status": "validated"},
	})
}
