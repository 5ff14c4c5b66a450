package vector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newEmbeddingServer(t *testing.T, status int, body interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Error("expected Authorization header on embedding request")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			if err := json.NewEncoder(w).Encode(body); err != nil {
				t.Fatalf("failed to encode mock response: %v", err)
			}
		}
	}))
}

func TestOpenAIEmbedderSuccess(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{
			{"embedding": []float32{0.25, -0.5, 0.75}},
		},
	})
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{
		APIKey:     "test-key",
		Dimensions: 3,
		BaseURL:    srv.URL,
	})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	embedding, err := e.CreateEmbedding("some interpretation text")
	if err != nil {
		t.Fatalf("CreateEmbedding failed: %v", err)
	}
	if len(embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(embedding))
	}
	if embedding[0] != 0.25 || embedding[1] != -0.5 || embedding[2] != 0.75 {
		t.Errorf("unexpected embedding values: %v", embedding)
	}
}

func TestOpenAIEmbedderDimensionMismatch(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{
			{"embedding": []float32{0.1, 0.2}},
		},
	})
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{
		APIKey:     "test-key",
		Dimensions: 3,
		BaseURL:    srv.URL,
	})

	if _, err := e.CreateEmbedding("text"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOpenAIEmbedderAPIError(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusTooManyRequests, map[string]interface{}{
		"error": map[string]string{
			"message": "rate limit exceeded",
			"type":    "rate_limit_error",
		},
	})
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	if _, err := e.CreateEmbedding("text"); err == nil {
		t.Error("expected API error")
	}
}

func TestOpenAIEmbedderEmptyResponse(t *testing.T) {
	srv := newEmbeddingServer(t, http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{},
	})
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	if _, err := e.CreateEmbedding("text"); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestOpenAIEmbedderMissingAPIKey(t *testing.T) {
	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{})
	if err := e.Initialize(); err == nil {
		t.Error("expected Initialize to fail without an API key")
	}
	if _, err := e.CreateEmbedding("text"); err == nil {
		t.Error("expected CreateEmbedding to fail without an API key")
	}
}
