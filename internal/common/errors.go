// Package common defines the closed set of sentinel errors shared by the
// credential store, the session layer and the CLI, plus a few small random
// helpers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")

	// ErrorUnauthorized is the authentication failure: a password did not
	// verify against the stored salt and hash.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrNotLoggedIn    = errors.New("not logged in")

	// ErrCorruptState marks an unparsable persisted users blob. The store
	// recovers from it locally and only logs it.
	ErrCorruptState = errors.New("corrupt state")

	// ErrEntropyFailure is fatal: no salt may be produced without secure entropy.
	ErrEntropyFailure = errors.New("secure entropy unavailable")

	// Validation / encoding errors.
	ErrorValidation    = errors.New("validation error")
	ErrInvalidEncoding = errors.New("invalid encoding")
)
