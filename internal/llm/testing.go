package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockResponseConfig holds configuration for mock API responses
type MockResponseConfig struct {
	StatusCode   int
	ResponseBody interface{}
	Headers      map[string]string
}

// MockServer creates a test server that returns the configured response
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}

		if _, exists := config.Headers["Content-Type"]; !exists {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(config.StatusCode)

		if config.ResponseBody != nil {
			var respBytes []byte
			var err error

			switch body := config.ResponseBody.(type) {
			case string:
				respBytes = []byte(body)
			case []byte:
				respBytes = body
			default:
				respBytes, err = json.Marshal(body)
				if err != nil {
					t.Fatalf("Failed to marshal mock response: %v", err)
				}
			}

			if _, err := w.Write(respBytes); err != nil {
				t.Fatalf("Failed to write response body: %v", err)
			}
		}
	}))
}

// StaticProvider is a canned implementation of CompletionProvider for tests.
type StaticProvider struct {
	ProviderName string
	Text         string
	Err          error

	// LastRequest records the most recent request for assertions.
	LastRequest *CompletionRequest

	// Calls counts how many times Complete was invoked.
	Calls int
}

// NewStaticProvider creates a StaticProvider returning the given text or error.
func NewStaticProvider(text string, err error) *StaticProvider {
	return &StaticProvider{
		ProviderName: "static",
		Text:         text,
		Err:          err,
	}
}

// Name returns the provider name
func (p *StaticProvider) Name() string {
	if p.ProviderName == "" {
		return "static"
	}
	return p.ProviderName
}

// Complete returns the canned response, honoring context cancellation.
func (p *StaticProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	p.Calls++
	reqCopy := req
	p.LastRequest = &reqCopy

	if p.Err != nil {
		return "", p.Err
	}
	return p.Text, nil
}
