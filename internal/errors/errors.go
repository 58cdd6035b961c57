package errors

import (
	"fmt"
)

// DocError is the structured error type for the documentation server.
// It provides rich context for error handling, logging, and user presentation.
type DocError struct {
	// Code is the unique error code (e.g., "ERR_201_DOCUMENT_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Provider, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DocError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DocError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with DocError.
func (e *DocError) Is(target error) bool {
	if t, ok := target.(*DocError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DocError) WithDetail(key, value string) *DocError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *DocError) WithSuggestion(suggestion string) *DocError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DocError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *DocError {
	return &DocError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a DocError from an existing error.
// The error's message becomes the DocError message.
func Wrap(code string, err error) *DocError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a document-not-found error.
func NotFound(id string) *DocError {
	return New(ErrCodeDocumentNotFound, fmt.Sprintf("document %q not found", id), nil)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *DocError {
	return New(ErrCodeInvalidInput, message, cause)
}

// DimensionMismatch creates an embedding dimension mismatch error.
func DimensionMismatch(expected, got int) *DocError {
	return New(ErrCodeDimensionMismatch,
		fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", expected, got), nil).
		WithSuggestion("The document was likely embedded with a different model. Re-add it.")
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DocError {
	return New(ErrCodeInternal, message, cause)
}

// IsNotFound checks if an error is a document-not-found error.
func IsNotFound(err error) bool {
	if de, ok := err.(*DocError); ok {
		return de.Code == ErrCodeDocumentNotFound
	}
	return false
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a DocError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DocError); ok {
		return de.Retryable
	}
	return false
}

// GetCode extracts the error code from a DocError.
// Returns empty string if not a DocError.
func GetCode(err error) string {
	if de, ok := err.(*DocError); ok {
		return de.Code
	}
	return ""
}

// GetCategory extracts the category from a DocError.
// Returns empty string if not a DocError.
func GetCategory(err error) Category {
	if de, ok := err.(*DocError); ok {
		return de.Category
	}
	return ""
}
