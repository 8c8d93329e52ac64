package dto

import "github.com/spec-kit/commerce-service/internal/domain"

// UserResponse is the public projection of a shopper account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      domain.Name `json:"name"`
	Email     string      `json:"email"`
	Active    bool        `json:"active"`
	Validated bool        `json:"validated"`
}

// NewUserResponse maps the domain model.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Active:    user.Active,
		Validated: user.Validated,
	}
}

// CustomerRequest payload for creating storefront contacts.
type CustomerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Validate checks required fields and reports the first violation.
func (r CustomerRequest) Validate() string {
	if r.FirstName == "" {
		return "FirstName is required."
	}
	if r.LastName == "" {
		return "LastName is required."
	}
	return validateEmail(r.Email)
}

// CustomerResponse is the public projection of a customer.
type CustomerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// NewCustomerResponse maps the domain model.
func NewCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
	}
}
