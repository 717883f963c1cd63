package domain

import "errors"

// Domain error kinds. Operations wrap these with context via fmt.Errorf
// and %w; the API layer maps them to response classes with errors.Is.
//
// ErrNotFound also covers visibility: an actor who may not see a record
// gets the same error as if the record did not exist.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid request")
	ErrConflict  = errors.New("conflict")
)
