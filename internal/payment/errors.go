package payment

import (
	"errors"
	"fmt"
)

// ErrPaymentNotFound reports an unknown provider payment identifier.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrAlreadySucceeded reports a repeated succeeded transition.
var ErrAlreadySucceeded = errors.New("payment already succeeded")

// ProviderError wraps payment-processor API failures
type ProviderError struct {
	Operation  string
	StatusCode int
	Cause      error
}

func (e ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment provider operation '%s' failed with status %d: %v", e.Operation, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("payment provider operation '%s' failed: %v", e.Operation, e.Cause)
}

func (e ProviderError) Unwrap() error {
	return e.Cause
}

// Temporary reports whether the failure is worth one bounded retry.
func (e ProviderError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// RepositoryError wraps storage failures with the failed operation
type RepositoryError struct {
	Operation string
	Cause     error
}

func (e RepositoryError) Error() string {
	return fmt.Sprintf("payment repository operation '%s' failed: %v", e.Operation, e.Cause)
}

func (e RepositoryError) Unwrap() error {
	return e.Cause
}

// WrapRepositoryError wraps a storage failure with operation context
func WrapRepositoryError(err error, operation string) error {
	return RepositoryError{Operation: operation, Cause: err}
}
