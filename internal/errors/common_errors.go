package errors

import (
	"errors"
	"fmt"

	"logview/internal/crossfile"
	"logview/internal/cycletime"
	"logview/internal/logparse"
	"logview/internal/operations"
	"logview/internal/tabular"
	"logview/internal/uph"
	"logview/internal/validation"
)

// ErrorType classifies an application error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeProcessing ErrorType = "PROCESSING"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError creates an error for unreadable input files
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates an error for failed reads or writes on disk
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewProcessingError creates an error for a pipeline stage that produced no result
func NewProcessingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeProcessing, message, cause)
}

// Classify wraps a pipeline error in an AppError of the matching type.
// Errors that already are AppErrors are returned unchanged.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, operations.ErrFunctionNotFound):
		return NewAppError(ErrTypeNotFound, "function not found", err)
	case errors.Is(err, cycletime.ErrNoInputFiles),
		errors.Is(err, crossfile.ErrReferenceMissing):
		return NewAppError(ErrTypeNotFound, "input not found", err)
	case errors.Is(err, uph.ErrInvalidDate):
		return NewAppError(ErrTypeValidation, "invalid date", err)
	case errors.Is(err, operations.ErrNoSpreadsheet),
		errors.Is(err, validation.ErrUnsupportedExtension),
		errors.Is(err, validation.ErrTemporaryFile),
		errors.Is(err, validation.ErrDuplicateUpload):
		return NewAppError(ErrTypeValidation, "unsupported input", err)
	case errors.Is(err, logparse.ErrUnreadable),
		errors.Is(err, crossfile.ErrReferenceInvalid),
		errors.Is(err, crossfile.ErrMissingSheet),
		errors.Is(err, crossfile.ErrMissingColumns),
		errors.Is(err, uph.ErrMissingColumn),
		errors.Is(err, tabular.ErrSheetNotFound):
		return NewParsingError("input could not be parsed", err)
	case errors.Is(err, cycletime.ErrNoCycles),
		errors.Is(err, cycletime.ErrNoFrameData),
		errors.Is(err, cycletime.ErrNoUsableFiles),
		errors.Is(err, logparse.ErrEmptyLog),
		errors.Is(err, uph.ErrNoRowsInRange):
		return NewProcessingError("no data to process", err)
	}
	return NewStorageError("operation failed", err)
}
