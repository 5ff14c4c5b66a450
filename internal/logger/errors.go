package logger

import (
	"errors"
	"strings"

	"github.com/AbhiraajV/brainlm/internal/errortypes"
)

// Convenience aliases so callers that already import logger do not need a
// second import for the worker's error taxonomy.

// AppError is the structured error type used throughout the worker.
type AppError = errortypes.AppError

// ErrorType identifies a category in the worker's error taxonomy.
type ErrorType = errortypes.ErrorType

// Constructors re-exported from errortypes.
var (
	EventNotFoundError           = errortypes.EventNotFoundError
	EmptyCompletionError         = errortypes.EmptyCompletionError
	InvalidCompletionFormatError = errortypes.InvalidCompletionFormatError
	SchemaViolationError         = errortypes.SchemaViolationError
	EmbeddingError               = errortypes.EmbeddingError
	PersistenceError             = errortypes.PersistenceError
	ValidationError              = errortypes.ValidationError
	ConfigError                  = errortypes.ConfigError
	APIError                     = errortypes.APIError
	InternalError                = errortypes.InternalError
)

// LogError logs an error through the default logger, attaching the
// structured context carried by an AppError when present.
func LogError(err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		fields := make(map[string]interface{}, len(appErr.Fields)+2)
		for k, v := range appErr.Fields {
			fields[k] = v
		}
		fields["error_type"] = string(appErr.Type)

		// Keep only the top of the stack; full traces drown the log line.
		if appErr.StackInfo != "" {
			lines := strings.SplitN(appErr.StackInfo, "\n", 4)
			if len(lines) > 3 {
				lines = lines[:3]
			}
			fields["stack"] = strings.Join(lines, " > ")
		}

		GetDefaultLogger().WithFields(fields).Error(appErr.Error())
		return
	}

	Error("Unstructured error: %v", err)
}
