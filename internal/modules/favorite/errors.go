package favorite

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("favorite not found")
	ErrNotOwner = errors.New("favorite belongs to another user")
)

// ValidationError names the field and the violated rule so handlers can
// report it without string matching.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}
