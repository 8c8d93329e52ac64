package domain

import "time"

// Admin is the back-office principal. Admins skip the email-validation
// lifecycle but share the token-version revocation scheme with users.
type Admin struct {
	ID           string
	Name         Name
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
