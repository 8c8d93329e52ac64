package util

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Subtype letters appended to the HTTP status when composing error codes.
// Clients branch on the composed code instead of parsing message text.
const (
	SubtypeGeneric   = "A"
	SubtypeSecondary = "B"
	SubtypeInvalid   = "W"
	SubtypeExpired   = "X"
	SubtypeDefault   = "Y"
)

// Code composes the machine-readable error code from an HTTP status and a
// discriminating subtype letter, e.g. Code(401, "X") == "401X".
func Code(status int, subtype string) string {
	return strconv.Itoa(status) + subtype
}

// DomainError standardizes application errors across handlers and middleware.
type DomainError struct {
	Status   int
	Subtype  string
	Message  string
	Redirect *bool
	Err      error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Code returns the composed status+subtype code string.
func (e *DomainError) Code() string {
	return Code(e.Status, e.Subtype)
}

// NewDomainError constructs a DomainError.
func NewDomainError(status int, subtype, message string) *DomainError {
	return &DomainError{Status: status, Subtype: subtype, Message: message}
}

func NewValidationError(message string) error {
	return NewDomainError(http.StatusBadRequest, SubtypeGeneric, message)
}

func NewUnauthorized(subtype, message string) error {
	return NewDomainError(http.StatusUnauthorized, subtype, message)
}

func NewForbidden(subtype, message string) error {
	return NewDomainError(http.StatusForbidden, subtype, message)
}

func NewNotFound(resource string) error {
	return NewDomainError(http.StatusNotFound, SubtypeGeneric, fmt.Sprintf("%s not found.", resource))
}

func NewConflict(message string) error {
	return NewDomainError(http.StatusUnprocessableEntity, SubtypeGeneric, message)
}

func NewInternalError(err error) error {
	return &DomainError{
		Status:  http.StatusInternalServerError,
		Subtype: SubtypeGeneric,
		Message: "Internal server error.",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError. Unknown failures map
// to an opaque 500 so internals never leak into responses.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("Resource").(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Status:  http.StatusInternalServerError,
		Subtype: SubtypeGeneric,
		Message: "Internal server error.",
		Err:     err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
