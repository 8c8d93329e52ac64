package events

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventValidationTokenIssued EventType = "validation_token_issued"
	EventUserValidated         EventType = "user_validated"
	EventTokensRevoked         EventType = "tokens_revoked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	PrincipalID string      `json:"principal_id"`
	Role        domain.Role `json:"role"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email           string `json:"email"`
	ValidationToken string `json:"validation_token"`
}

// ValidationTokenIssuedPayload payload.
type ValidationTokenIssuedPayload struct {
	Email           string `json:"email"`
	ValidationToken string `json:"validation_token"`
}

// UserValidatedPayload payload.
type UserValidatedPayload struct {
	Email string `json:"email"`
}

// TokensRevokedPayload payload.
type TokensRevokedPayload struct {
	TokenVersion int `json:"token_version"`
}
