package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// CustomersHandler exposes storefront contact endpoints.
type CustomersHandler struct {
	customers repository.CustomerRepository
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customers repository.CustomerRepository) *CustomersHandler {
	return &CustomersHandler{customers: customers}
}

// Index handles GET /v1/customers.
func (h *CustomersHandler) Index(c *fiber.Ctx) error {
	customers, err := h.customers.List(c.Context())
	if err != nil {
		return err
	}

	resp := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		resp = append(resp, dto.NewCustomerResponse(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /v1/customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid payload.")
	}
	if msg := req.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}

	if _, err := h.customers.GetByEmail(c.Context(), req.Email); err == nil {
		return apperrors.NewConflict("A customer with this email already exists.")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	customer := &domain.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := h.customers.Create(c.Context(), customer); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCustomerResponse(customer)})
}
