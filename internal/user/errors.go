package user

import (
	"errors"
	"fmt"
)

// ErrTrialAlreadyUsed rejects a second trial activation.
var ErrTrialAlreadyUsed = errors.New("trial already used")

// ErrUserNotFound reports a missing user record.
var ErrUserNotFound = errors.New("user not found")

// RepositoryError wraps storage failures with the failed operation
type RepositoryError struct {
	Operation string
	Cause     error
}

func (e RepositoryError) Error() string {
	return fmt.Sprintf("user repository operation '%s' failed: %v", e.Operation, e.Cause)
}

func (e RepositoryError) Unwrap() error {
	return e.Cause
}

// WrapRepositoryError wraps a storage failure with operation context
func WrapRepositoryError(err error, operation string) error {
	return RepositoryError{Operation: operation, Cause: err}
}
