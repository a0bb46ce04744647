// Package service holds the auth and todo business rules that sit between
// the HTTP handlers and the repositories.
package service

import "errors"

// Failure classes surfaced to the HTTP boundary. Each returned error wraps
// exactly one of these, so handlers map them with errors.Is.
var (
	// ErrValidation marks malformed input (empty username, empty text...).
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a duplicate username.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials covers both unknown user and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated marks a missing, invalid or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound marks a todo that does not exist for the caller.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a backing store failure; details are logged only.
	ErrStorage = errors.New("storage failure")
)
