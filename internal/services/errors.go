package services

import "errors"

var (
	// ErrNotFound signals an operation against a nonexistent id. The store
	// is left untouched.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals invalid input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")
)
