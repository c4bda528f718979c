// Package common defines shared constants and sentinel errors used across
// client layers of Bill Board. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Session errors.
	ErrNoPendingUser  = errors.New("no pending user")
	ErrMissingSession = errors.New("missing session")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrSignedIn       = errors.New("already signed in")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)
