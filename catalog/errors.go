package catalog

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotFound indicates no comic has the requested ID
	ErrNotFound = errors.New("comic not found")
	// ErrDuplicate indicates a comic with the same ID already exists
	ErrDuplicate = errors.New("comic already exists")
)

// ValidationError reports an invalid comic field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid comic: %s %s", e.Field, e.Reason)
}
