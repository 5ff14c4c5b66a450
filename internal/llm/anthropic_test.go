package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicComplete(t *testing.T) {
	var captured AnthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("unexpected X-API-Key header: %q", got)
		}
		if got := r.Header.Get("Anthropic-Version"); got == "" {
			t.Error("missing Anthropic-Version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"text": `{"interpretation":"..."}`},
			},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	req := CompletionRequest{
		Model:       "claude-3-5-haiku-20241022",
		Temperature: 0.5,
		Messages: []Message{
			{Role: RoleSystem, Content: "You interpret recorded events."},
			{Role: RoleUser, Content: `{"content":"x","occurred_at":"2026-08-30T21:04:00Z"}`},
		},
	}

	text, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `{"interpretation":"..."}` {
		t.Errorf("unexpected completion text: %q", text)
	}

	// The system message must travel as the top-level system field.
	if captured.System != "You interpret recorded events." {
		t.Errorf("system prompt not lifted: %q", captured.System)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != RoleUser {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
	if captured.Temperature != 0.5 {
		t.Errorf("unexpected temperature: %v", captured.Temperature)
	}
}

func TestAnthropicCompleteEmptyContent(t *testing.T) {
	srv := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusOK,
		ResponseBody: map[string]interface{}{"content": []interface{}{}},
	})
	defer srv.Close()

	p := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	text, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
	})
	if err != nil {
		t.Fatalf("expected no error for empty content, got %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	srv := MockServer(t, MockResponseConfig{
		StatusCode: http.StatusServiceUnavailable,
		ResponseBody: map[string]interface{}{
			"error": map[string]string{"type": "overloaded_error", "message": "overloaded"},
		},
	})
	defer srv.Close()

	p := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
	}); err == nil {
		t.Error("expected API error")
	}
}

func TestNewProviderFactory(t *testing.T) {
	cases := []struct {
		name    string
		wantErr bool
	}{
		{ProviderOpenAI, false},
		{ProviderAnthropic, false},
		{"google", true},
		{"", true},
	}

	for _, tc := range cases {
		p, err := NewProvider(tc.name, Config{APIKey: "k"})
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewProvider(%q): expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewProvider(%q) failed: %v", tc.name, err)
			continue
		}
		if p.Name() != tc.name {
			t.Errorf("NewProvider(%q).Name() = %q", tc.name, p.Name())
		}
	}
}
