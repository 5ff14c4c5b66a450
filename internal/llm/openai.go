package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	openaiAPIURL = "https://api.openai.com/v1/chat/completions"

	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIProvider implements the CompletionProvider interface for OpenAI's
// chat completions API.
type OpenAIProvider struct {
	Config
	httpClient *http.Client
}

// OpenAIMessage represents a message in OpenAI's chat format
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponseFormat selects the response format for a completion.
type OpenAIResponseFormat struct {
	Type string `json:"type"`
}

// OpenAIRequest represents a request to OpenAI's API
type OpenAIRequest struct {
	Model          string                `json:"model"`
	Messages       []OpenAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	MaxTokens      int                   `json:"max_tokens"`
	ResponseFormat *OpenAIResponseFormat `json:"response_format,omitempty"`
}

// OpenAIResponse represents a response from OpenAI's API
type OpenAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider creates a new instance of the OpenAI provider
func NewOpenAIProvider(config Config) *OpenAIProvider {
	if config.BaseURL == "" {
		config.BaseURL = openaiAPIURL
	}
	return &OpenAIProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete implements the CompletionProvider interface for OpenAI
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not provided")
	}

	model := req.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	messages := make([]OpenAIMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, OpenAIMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := OpenAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   DefaultMaxTokens,
	}

	// Plain text responses omit the field entirely; everything else is
	// passed through as the format type.
	if req.ResponseFormat != "" && req.ResponseFormat != ResponseFormatText {
		reqBody.ResponseFormat = &OpenAIResponseFormat{Type: req.ResponseFormat}
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.BaseURL,
		strings.NewReader(string(reqJSON)),
	)
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.APIKey))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("error sending request to OpenAI API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %v", err)
	}

	var openaiResponse OpenAIResponse
	if err := json.Unmarshal(respBody, &openaiResponse); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	if openaiResponse.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s: %s",
			openaiResponse.Error.Type, openaiResponse.Error.Message)
	}

	// An empty first choice is reported to the caller as empty text, not
	// an error; the pipeline decides how to classify it.
	if len(openaiResponse.Choices) == 0 {
		return "", nil
	}

	return openaiResponse.Choices[0].Message.Content, nil
}
