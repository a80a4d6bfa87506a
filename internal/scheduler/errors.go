package scheduler

import "fmt"

// SchedulerError carries a stable code alongside the human message.
type SchedulerError struct {
	Code    string
	Message string
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("scheduler error [%s]: %s", e.Code, e.Message)
}

// Error codes
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrInvalidConfiguration    = "invalid_configuration"
)

// NewSchedulerError creates a new scheduler error
func NewSchedulerError(code, message string) *SchedulerError {
	return &SchedulerError{Code: code, Message: message}
}

// NewConfigurationError reports an invalid scheduler setting.
func NewConfigurationError(field string, value interface{}, reason string) *SchedulerError {
	return &SchedulerError{
		Code:    ErrInvalidConfiguration,
		Message: fmt.Sprintf("%s=%v %s", field, value, reason),
	}
}
