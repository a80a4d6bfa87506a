package journal

import (
	"errors"
	"fmt"
)

// ErrEventNotFound reports a missing or already-analyzed event.
var ErrEventNotFound = errors.New("event not found")

// RepositoryError wraps storage failures with the failed operation
type RepositoryError struct {
	Operation string
	Cause     error
}

func (e RepositoryError) Error() string {
	return fmt.Sprintf("journal repository operation '%s' failed: %v", e.Operation, e.Cause)
}

func (e RepositoryError) Unwrap() error {
	return e.Cause
}

// WrapRepositoryError wraps a storage failure with operation context
func WrapRepositoryError(err error, operation string) error {
	return RepositoryError{Operation: operation, Cause: err}
}
