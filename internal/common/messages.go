package common

import "errors"

// UserMessage maps an error from the store or the auth flows to the text shown
// to the person at the terminal. Unknown errors get a generic message so that
// internal details never reach the prompt.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrorNotFound):
		return "No user found with that username."
	case errors.Is(err, ErrorUnauthorized):
		return "Invalid credentials."
	case errors.Is(err, ErrorAlreadyExists):
		return "User exists. Choose a different username or log in."
	case errors.Is(err, ErrorForbidden):
		return "Only approvers can do that."
	case errors.Is(err, ErrNotLoggedIn):
		return "Please log in first."
	case errors.Is(err, ErrVersionConflict):
		return "The account data changed in the meantime. Please try again."
	case errors.Is(err, ErrEntropyFailure):
		return "Secure random generator unavailable; refusing to continue."
	case errors.Is(err, ErrorValidation):
		return err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}

var known = []error{
	ErrorNotFound, ErrorAlreadyExists, ErrVersionConflict, ErrorUnauthorized,
	ErrorForbidden, ErrNotLoggedIn, ErrCorruptState, ErrEntropyFailure,
	ErrorValidation, ErrInvalidEncoding,
}

// IsKnown reports whether err wraps one of the package's sentinel errors.
func IsKnown(err error) bool {
	for _, k := range known {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
