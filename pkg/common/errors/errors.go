// Package errors defines the error types shared across the gopush library.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types used across the gopush library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrResubscribe indicates a second subscription to a single-use source
	ErrResubscribe = errors.New("can be subscribed to at most once")

	// ErrNonPositiveRequest indicates a demand request of zero or less
	ErrNonPositiveRequest = errors.New("request amount must be positive")

	// ErrNilSource indicates that a source factory produced a nil source
	ErrNilSource = errors.New("source factory returned a nil source")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsProtocolViolation returns true if the error reports a misuse of the
// subscribe/request/cancel protocol rather than a data-path failure.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrResubscribe) || errors.Is(err, ErrNonPositiveRequest)
}

// ValidationError reports an invalid value supplied to a constructor or
// config field. It fails assembly before any subscription takes place.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError for the given module and field.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a human-oriented suggestion to the error.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// OperationError reports a failure of a named operation within a module,
// optionally with additional context about the failure.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError for the given module and operation.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches additional context to the error.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// CompositeError carries a primary cause plus secondary failures that occurred
// while the primary was already in flight, typically a resource cleanup
// failing during error propagation. Secondary causes are preserved rather
// than discarded so callers can still match them with errors.Is/As.
type CompositeError struct {
	Cause      error
	Suppressed []error
}

// Compose returns an error with cause as the primary failure and any non-nil
// suppressed errors attached. If there is nothing to suppress, cause is
// returned unchanged.
func Compose(cause error, suppressed ...error) error {
	var kept []error
	for _, err := range suppressed {
		if err != nil {
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return cause
	}
	return &CompositeError{Cause: cause, Suppressed: kept}
}

func (e *CompositeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Cause.Error())
	for _, s := range e.Suppressed {
		b.WriteString(" (suppressed: ")
		b.WriteString(s.Error())
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes the cause and all suppressed errors to errors.Is/As.
func (e *CompositeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Suppressed)+1)
	errs = append(errs, e.Cause)
	errs = append(errs, e.Suppressed...)
	return errs
}
