package vector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openaiEmbeddingsURL = "https://api.openai.com/v1/embeddings"

	embeddingRequestTimeout = 30 * time.Second
)

// OpenAIEmbedder implements the Embedder interface using OpenAI's
// embeddings API.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	baseURL    string
	httpClient *http.Client
}

// OpenAIEmbedderConfig holds configuration for the OpenAIEmbedder.
type OpenAIEmbedderConfig struct {
	APIKey     string
	Model      string
	Dimensions int
	BaseURL    string // overridable for testing; defaults to the OpenAI endpoint
}

// openaiEmbeddingRequest represents a request to OpenAI's embeddings API.
type openaiEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// openaiEmbeddingResponse represents a response from OpenAI's embeddings API.
type openaiEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIEmbedder creates a new OpenAIEmbedder instance.
func NewOpenAIEmbedder(config OpenAIEmbedderConfig) *OpenAIEmbedder {
	model := config.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	dimensions := config.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = openaiEmbeddingsURL
	}

	return &OpenAIEmbedder{
		apiKey:     config.APIKey,
		model:      model,
		dimensions: dimensions,
		baseURL:    baseURL,
		httpClient: &http.Client{
			Timeout: embeddingRequestTimeout,
		},
	}
}

// Initialize verifies the embedder configuration.
func (e *OpenAIEmbedder) Initialize() error {
	if e.apiKey == "" {
		return fmt.Errorf("OpenAI API key not provided")
	}
	return nil
}

// CreateEmbedding implements the Embedder interface for OpenAI.
func (e *OpenAIEmbedder) CreateEmbedding(text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided")
	}

	reqBody := openaiEmbeddingRequest{
		Model: e.model,
		Input: text,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling embedding request: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.baseURL, strings.NewReader(string(reqJSON)))
	if err != nil {
		return nil, fmt.Errorf("error creating embedding request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request to OpenAI embeddings API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading embedding response body: %v", err)
	}

	var embeddingResp openaiEmbeddingResponse
	if err := json.Unmarshal(respBody, &embeddingResp); err != nil {
		return nil, fmt.Errorf("error unmarshaling embedding response: %v", err)
	}

	if embeddingResp.Error != nil {
		return nil, fmt.Errorf("OpenAI embeddings API error: %s: %s",
			embeddingResp.Error.Type, embeddingResp.Error.Message)
	}

	if len(embeddingResp.Data) == 0 || len(embeddingResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI embeddings API")
	}

	embedding := embeddingResp.Data[0].Embedding
	if len(embedding) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d",
			len(embedding), e.dimensions)
	}

	return embedding, nil
}
