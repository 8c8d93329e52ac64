package domain

import "time"

// User is the domain model for shoppers who authenticate against the store.
// TokenVersion is the revocation counter: tokens minted with an older value
// are dead regardless of their remaining expiry. ValidationToken holds the
// single-use email-validation credential until it is consumed.
type User struct {
	ID              string
	Name            Name
	Email           string
	PasswordHash    string
	Active          bool
	Validated       bool
	ValidationToken string
	TokenVersion    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
