package dto

import (
	"net/mail"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// LoginRequest payload for user and admin login. PersistSession is required
// and controls whether the refresh cookie survives the browser session.
type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	PersistSession *bool  `json:"persistSession"`
}

// Validate checks required fields and reports the first violation.
func (r LoginRequest) Validate() string {
	if msg := validateEmail(r.Email); msg != "" {
		return msg
	}
	if msg := validatePassword(r.Password); msg != "" {
		return msg
	}
	if r.PersistSession == nil {
		return "PersistSession is required."
	}
	return ""
}

// RefreshRequest optional payload for the refresh endpoint.
type RefreshRequest struct {
	PersistSession bool `json:"persistSession"`
}

// AccessTokenResponse carries the freshly minted access token.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// RegisterRequest payload for new shoppers.
type RegisterRequest struct {
	Name     domain.Name `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
}

// Validate checks required fields and reports the first violation.
func (r RegisterRequest) Validate() string {
	if len(r.Name.First) < 3 || len(r.Name.First) > 255 {
		return "Name.first length must be between 3 and 255 characters."
	}
	if len(r.Name.Last) < 3 || len(r.Name.Last) > 255 {
		return "Name.last length must be between 3 and 255 characters."
	}
	if msg := validateEmail(r.Email); msg != "" {
		return msg
	}
	return validatePassword(r.Password)
}

// ValidationTokenRequest payload for re-issuing a validation token.
type ValidationTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields and reports the first violation.
func (r ValidationTokenRequest) Validate() string {
	if msg := validateEmail(r.Email); msg != "" {
		return msg
	}
	return validatePassword(r.Password)
}

func validateEmail(email string) string {
	if email == "" {
		return "Email is required."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Email must be a valid email."
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return "Password is required."
	}
	if len(password) < 6 || len(password) > 1024 {
		return "Password length must be between 6 and 1024 characters."
	}
	return ""
}
