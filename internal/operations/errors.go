package operations

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrFunctionNotFound is returned for an unknown function id.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrDuplicateFunction is returned when an id is registered twice.
	ErrDuplicateFunction = errors.New("function already registered")
	// ErrNoSpreadsheet means a spreadsheet transformation got no usable input.
	ErrNoSpreadsheet = errors.New("no spreadsheet uploaded")
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// OperationError ties a failure to the function and step it happened in.
type OperationError struct {
	Type     ErrorType `json:"type"`
	Function string    `json:"function"`
	Step     string    `json:"step,omitempty"`
	Message  string    `json:"message"`
	Cause    error     `json:"-"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Function)
	if e.Step != "" {
		msg += "/" + e.Step
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewStepError wraps err as a failure of step inside function. Context
// errors become cancellation errors.
func NewStepError(function, step string, err error) *OperationError {
	typ := ErrorTypeExecution
	msg := "step failed"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		typ = ErrorTypeCancellation
		msg = "step cancelled"
	}
	return &OperationError{Type: typ, Function: function, Step: step, Message: msg, Cause: err}
}

// NewValidationError reports a request the function cannot run with.
func NewValidationError(function, message string, cause error) *OperationError {
	return &OperationError{Type: ErrorTypeValidation, Function: function, Message: message, Cause: cause}
}

// IsCancellation reports whether err is a cancellation operation error.
func IsCancellation(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type == ErrorTypeCancellation
	}
	return false
}
