package tools

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestInterpretEventResponseSuccessJSON(t *testing.T) {
	resp := InterpretEventResponse{
		Status:           "success",
		InterpretationID: "interp-1",
		Skipped:          false,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal InterpretEventResponse: %v", err)
	}

	// Error fields must not appear in successful responses.
	if strings.Contains(string(data), "error") {
		t.Errorf("Expected no error fields in success response, got %s", data)
	}
	// Skipped is always present, even when false.
	if !strings.Contains(string(data), `"skipped":false`) {
		t.Errorf("Expected skipped field in response, got %s", data)
	}
}

func TestInterpretEventResponseErrorJSON(t *testing.T) {
	resp := InterpretEventResponse{
		Status:    "error",
		ErrorKind: "event_not_found",
		Error:     "event ev-404 does not exist",
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal InterpretEventResponse: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal JSON into map: %v", err)
	}

	if kind, ok := jsonMap["error_kind"].(string); !ok || kind != "event_not_found" {
		t.Errorf("Expected error_kind='event_not_found', got '%v'", jsonMap["error_kind"])
	}
	if _, ok := jsonMap["interpretation_id"]; ok {
		t.Errorf("Expected no interpretation_id in error response, got %s", data)
	}
}

func TestSearchInterpretationsRequestDefaults(t *testing.T) {
	var req SearchInterpretationsRequest
	if err := json.Unmarshal([]byte(`{"query": "sleep"}`), &req); err != nil {
		t.Fatalf("Failed to unmarshal SearchInterpretationsRequest: %v", err)
	}

	if req.Query != "sleep" {
		t.Errorf("Expected query='sleep', got '%s'", req.Query)
	}
	// A zero limit signals the server to apply DefaultSearchLimit.
	if req.Limit != 0 {
		t.Errorf("Expected zero limit for unspecified field, got %d", req.Limit)
	}
}

func TestRecordEventRequestOptionalTimestamp(t *testing.T) {
	var req RecordEventRequest
	payload := `{"user_id": "user-1", "content": "Went for a run", "occurred_at": "2024-05-01T07:30:00Z"}`
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("Failed to unmarshal RecordEventRequest: %v", err)
	}

	if req.UserID != "user-1" || req.Content != "Went for a run" {
		t.Errorf("Unexpected request fields: %+v", req)
	}
	if req.OccurredAt != "2024-05-01T07:30:00Z" {
		t.Errorf("Expected occurred_at to round-trip, got '%s'", req.OccurredAt)
	}
}
