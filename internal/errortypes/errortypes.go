// Package errortypes provides the error taxonomy for the BrainLM
// interpretation worker. Every failure mode of the pipeline maps to
// exactly one ErrorType so callers can decide whether retrying with the
// same input can ever succeed.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType string

// Error types
const (
	// ErrorTypeEventNotFound means the event id has no matching record.
	// Retrying with the same id will not succeed.
	ErrorTypeEventNotFound ErrorType = "event_not_found"

	// ErrorTypeEmptyCompletion means the completion gateway returned no
	// usable text (transport error, API error, or an empty first choice).
	ErrorTypeEmptyCompletion ErrorType = "empty_completion"

	// ErrorTypeInvalidCompletionFormat means the completion text was not
	// parseable as JSON.
	ErrorTypeInvalidCompletionFormat ErrorType = "invalid_completion_format"

	// ErrorTypeSchemaViolation means the parsed completion failed the
	// interpretation document shape or length constraints.
	ErrorTypeSchemaViolation ErrorType = "completion_schema_violation"

	// ErrorTypeEmbedding means the embedding gateway failed.
	ErrorTypeEmbedding ErrorType = "embedding_failure"

	// ErrorTypePersistence means the store failed for a reason other than
	// a uniqueness conflict.
	ErrorTypePersistence ErrorType = "persistence_failure"

	// Ambient types shared with the tool server and setup paths.
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeAPI        ErrorType = "api"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents an application error with context
type AppError struct {
	Err       error
	Type      ErrorType
	Message   string
	StackInfo string
	Fields    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

// Unwrap unwraps the error to support errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField adds a field to the error for additional context
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error for additional context
func (e *AppError) WithFields(fields map[string]interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// captureStack captures the stack trace at the call site
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		// Skip testing and standard library frames
		if !strings.Contains(frame.File, "testing/") && !strings.Contains(frame.File, "/go/src/") {
			fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return builder.String()
}

// newAppError creates a new AppError with the given type, underlying error, and message
func newAppError(errType ErrorType, err error, message string) *AppError {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &AppError{
		Err:       err,
		Type:      errType,
		Message:   message,
		StackInfo: captureStack(),
		Fields:    make(map[string]interface{}),
	}
}

// EventNotFoundError creates a new event-not-found error
func EventNotFoundError(err error, message string) *AppError {
	return newAppError(ErrorTypeEventNotFound, err, message)
}

// EmptyCompletionError creates a new empty-completion error
func EmptyCompletionError(err error, message string) *AppError {
	return newAppError(ErrorTypeEmptyCompletion, err, message)
}

// InvalidCompletionFormatError creates a new invalid-completion-format error
func InvalidCompletionFormatError(err error, message string) *AppError {
	return newAppError(ErrorTypeInvalidCompletionFormat, err, message)
}

// SchemaViolationError creates a new completion-schema-violation error
func SchemaViolationError(err error, message string) *AppError {
	return newAppError(ErrorTypeSchemaViolation, err, message)
}

// EmbeddingError creates a new embedding-failure error
func EmbeddingError(err error, message string) *AppError {
	return newAppError(ErrorTypeEmbedding, err, message)
}

// PersistenceError creates a new persistence-failure error
func PersistenceError(err error, message string) *AppError {
	return newAppError(ErrorTypePersistence, err, message)
}

// ValidationError creates a new validation error
func ValidationError(err error, message string) *AppError {
	return newAppError(ErrorTypeValidation, err, message)
}

// ConfigError creates a new configuration error
func ConfigError(err error, message string) *AppError {
	return newAppError(ErrorTypeConfig, err, message)
}

// APIError creates a new API error
func APIError(err error, message string) *AppError {
	return newAppError(ErrorTypeAPI, err, message)
}

// InternalError creates a new internal error
func InternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeInternal, err, message)
}

// LogError logs an AppError using the provided slog.Logger or the default slog logger.
// It logs the error message, type, stack trace, and any associated fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		args := []any{
			"type", string(appErr.Type),
			"original_error", appErr.Err.Error(),
		}
		if appErr.StackInfo != "" {
			args = append(args, "stack", appErr.StackInfo)
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		logger.Error(appErr.Message, args...)
	} else {
		// For generic errors, log the error message and the error itself
		logger.Error(err.Error(), "error", err)
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for errors
// that were not created by this package.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsErrorType checks whether err carries the given ErrorType
func IsErrorType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsEventNotFound checks if an error is an event-not-found error
func IsEventNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeEventNotFound)
}

// IsEmptyCompletion checks if an error is an empty-completion error
func IsEmptyCompletion(err error) bool {
	return IsErrorType(err, ErrorTypeEmptyCompletion)
}

// IsInvalidCompletionFormat checks if an error is an invalid-completion-format error
func IsInvalidCompletionFormat(err error) bool {
	return IsErrorType(err, ErrorTypeInvalidCompletionFormat)
}

// IsSchemaViolation checks if an error is a completion-schema-violation error
func IsSchemaViolation(err error) bool {
	return IsErrorType(err, ErrorTypeSchemaViolation)
}

// IsEmbeddingFailure checks if an error is an embedding-failure error
func IsEmbeddingFailure(err error) bool {
	return IsErrorType(err, ErrorTypeEmbedding)
}

// IsPersistenceFailure checks if an error is a persistence-failure error
func IsPersistenceFailure(err error) bool {
	return IsErrorType(err, ErrorTypePersistence)
}
