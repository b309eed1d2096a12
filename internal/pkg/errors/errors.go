package errors

import "errors"

// Shared application errors. Services wrap these with fmt.Errorf("%w: ...")
// so handlers can map them to HTTP statuses with errors.Is.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned when no valid identity is present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an identity lacks the required rights.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for invalid client input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for resource state conflicts.
	ErrConflict = errors.New("resource state conflict")
)
