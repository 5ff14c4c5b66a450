// Package tools defines the interfaces and data structures
// for the BrainLM worker service.
package tools

const (
	// ToolInterpretEvent is the name of the interpret_event MCP tool
	ToolInterpretEvent = "interpret_event"

	// ToolRecordEvent is the name of the record_event MCP tool
	ToolRecordEvent = "record_event"

	// ToolSearchInterpretations is the name of the search_interpretations MCP tool
	ToolSearchInterpretations = "search_interpretations"

	// DefaultSearchLimit is the default number of results to return
	// when no limit is specified in a search_interpretations request
	DefaultSearchLimit = 5
)

// InterpretEventRequest defines the input schema for interpret_event tool
type InterpretEventRequest struct {
	// EventID is the identifier of the event to interpret
	EventID string `json:"event_id"`
}

// InterpretEventResponse defines the output schema for interpret_event tool
type InterpretEventResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// InterpretationID is the identifier of the stored interpretation
	InterpretationID string `json:"interpretation_id,omitempty"`

	// Skipped is true when the interpretation already existed and no
	// new one was generated
	Skipped bool `json:"skipped"`

	// SkipReason explains why the invocation was skipped, when it was
	SkipReason string `json:"skip_reason,omitempty"`

	// ErrorKind names the failure category when Status is "error"
	ErrorKind string `json:"error_kind,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// RecordEventRequest defines the input schema for record_event tool
type RecordEventRequest struct {
	// UserID is the identifier of the user who owns the event
	UserID string `json:"user_id"`

	// Content is the free-text content of the event
	Content string `json:"content"`

	// OccurredAt is an optional RFC 3339 timestamp for when the event
	// happened. If not specified, the current time is used.
	OccurredAt string `json:"occurred_at,omitempty"`
}

// RecordEventResponse defines the output schema for record_event tool
type RecordEventResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// EventID is the identifier assigned to the recorded event
	EventID string `json:"event_id,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SearchInterpretationsRequest defines the input schema for search_interpretations tool
type SearchInterpretationsRequest struct {
	// Query is the text to search for among stored interpretations
	Query string `json:"query"`

	// Limit is the maximum number of results to return
	// If not specified, DefaultSearchLimit will be used
	Limit int `json:"limit,omitempty"`
}

// SearchInterpretationsResponse defines the output schema for search_interpretations tool
type SearchInterpretationsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Results contains the matching interpretation texts, best first
	Results []string `json:"results"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
