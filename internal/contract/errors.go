package contract

import (
	"errors"
	"fmt"
)

// ErrNoRepositorySelected is returned when an analysis runs without a repository.
var ErrNoRepositorySelected = errors.New("no repository selected")

// ErrResourceLimitExceeded matches any *ResourceLimitError via errors.Is.
var ErrResourceLimitExceeded = errors.New("resource limit exceeded")

// ResourceLimitError reports that an extraction produced more files than allowed.
type ResourceLimitError struct {
	Kind  string // "churn" or "complexity"
	Count int    // Number of files that triggered the limit
	Limit int    // Configured maximum
}

// Error implements the error interface.
func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("too many files for %s analysis: %d exceeds the limit of %d", e.Kind, e.Count, e.Limit)
}

// Is lets errors.Is match ErrResourceLimitExceeded.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimitExceeded
}

// ValidationError reports an invalid request parameter.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
