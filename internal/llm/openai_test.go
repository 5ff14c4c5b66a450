package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func interpretationRequest() CompletionRequest {
	return CompletionRequest{
		Model:          "gpt-4o-mini",
		Temperature:    0.7,
		ResponseFormat: ResponseFormatJSONObject,
		Messages: []Message{
			{Role: RoleSystem, Content: "You interpret recorded events."},
			{Role: RoleUser, Content: `{"content":"a walk in the rain","occurred_at":"2026-08-30T21:04:00Z"}`},
		},
	}
}

func TestOpenAIComplete(t *testing.T) {
	var captured OpenAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"interpretation":"..."}`}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	text, err := p.Complete(context.Background(), interpretationRequest())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `{"interpretation":"..."}` {
		t.Errorf("unexpected completion text: %q", text)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %q", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("unexpected temperature: %v", captured.Temperature)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != RoleSystem {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
}

func TestOpenAICompleteTextFormatOmitsResponseFormat(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "plain text"}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	req := interpretationRequest()
	req.ResponseFormat = ResponseFormatText
	if _, err := p.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if _, present := captured["response_format"]; present {
		t.Error("response_format should be omitted for text responses")
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusOK,
		ResponseBody: map[string]interface{}{"choices": []interface{}{}},
	})
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	text, err := p.Complete(context.Background(), interpretationRequest())
	if err != nil {
		t.Fatalf("expected no error for empty choices, got %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestOpenAICompleteAPIError(t *testing.T) {
	srv := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusBadRequest,
		ResponseBody: map[string]interface{}{
			"error": map[string]string{"message": "invalid model", "type": "invalid_request_error"},
		},
	})
	defer srv.Close()

	p := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := p.Complete(context.Background(), interpretationRequest()); err == nil {
		t.Error("expected API error")
	}
}

func TestOpenAICompleteMissingAPIKey(t *testing.T) {
	p := NewOpenAIProvider(Config{})
	if _, err := p.Complete(context.Background(), interpretationRequest()); err == nil {
		t.Error("expected error without API key")
	}
}
