package domain

import "time"

// Customer is a storefront contact record managed by authenticated staff.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
}

// FullName returns the display form.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
