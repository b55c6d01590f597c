package core

import "fmt"

// ConfigurationError reports an invalid agent or pipeline configuration, such
// as duplicate output keys. It is detected at construction time, before any
// model call happens, and is always fatal.
type ConfigurationError struct {
	Reason string
}

// NewConfigurationError creates a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// GroupCancelledError reports that a parallel group was cancelled while
// members were still in flight. The group's output is omitted entirely; no
// partial merge of completed members takes place.
type GroupCancelledError struct {
	Group string
	Cause error
}

// Error implements the error interface.
func (e *GroupCancelledError) Error() string {
	return fmt.Sprintf("parallel group %s cancelled: %v", e.Group, e.Cause)
}

// Unwrap returns the cancellation cause, usually context.Canceled or
// context.DeadlineExceeded.
func (e *GroupCancelledError) Unwrap() error { return e.Cause }
