package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("caller is not authenticated")
	ErrForbidden       = errors.New("caller is not authorized to perform this action")
	ErrListingNotFound = errors.New("listing not found")
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// InvalidInputError carries the field that failed validation. It unwraps
// to ErrInvalidInput so callers can match the whole class with errors.Is.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: field %q %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
