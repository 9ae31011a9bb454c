package service

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups of rides or users that do not exist.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a mutation before any repository call. The
// message is safe to surface to the end user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
