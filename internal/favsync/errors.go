package favsync

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired — the operation needs a loaded identity.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrNotOwner — the record exists but belongs to another identity.
	ErrNotOwner = errors.New("favorite belongs to another user")

	// ErrNotFound — no matching favorite record.
	ErrNotFound = errors.New("favorite not found")

	// ErrSessionExpired — the store rejected the session or CSRF token;
	// the user has to sign in again.
	ErrSessionExpired = errors.New("session expired, please sign in again")

	// ErrUnavailable — the store could not be reached or answered with an
	// unexpected status. Never retried here; surfaced to the caller.
	ErrUnavailable = errors.New("favorites store unavailable")
)

// ValidationError is raised before any store call is made.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}
