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
	anthropicAPIURL = "https://api.anthropic.com/v1/messages"

	defaultAnthropicModel = "claude-3-5-haiku-20241022"
)

// AnthropicProvider implements the CompletionProvider interface for
// Anthropic's messages API. The response-format hint is not supported by
// the API and is ignored; the system prompt is expected to pin the output
// shape instead.
type AnthropicProvider struct {
	Config
	httpClient *http.Client
	version    string
}

// AnthropicMessage represents a message in Anthropic's chat format
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicRequest represents a request to Anthropic's API
type AnthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []AnthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

// AnthropicResponse represents a response from Anthropic's API
type AnthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicProvider creates a new instance of the Anthropic provider
func NewAnthropicProvider(config Config) *AnthropicProvider {
	if config.BaseURL == "" {
		config.BaseURL = anthropicAPIURL
	}
	return &AnthropicProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		version: "2023-06-01", // API version, can be made configurable
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// Complete implements the CompletionProvider interface for Anthropic
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("Anthropic API key not provided")
	}

	model := req.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	// Anthropic takes the system prompt as a top-level field rather than
	// a message role.
	var system string
	messages := make([]AnthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = m.Content
			continue
		}
		messages = append(messages, AnthropicMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := AnthropicRequest{
		Model:       model,
		System:      system,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   DefaultMaxTokens,
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
	httpReq.Header.Set("X-API-Key", p.APIKey)
	httpReq.Header.Set("Anthropic-Version", p.version)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("error sending request to Anthropic API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %v", err)
	}

	var anthResponse AnthropicResponse
	if err := json.Unmarshal(respBody, &anthResponse); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	if anthResponse.Error != nil {
		return "", fmt.Errorf("Anthropic API error: %s: %s",
			anthResponse.Error.Type, anthResponse.Error.Message)
	}

	if len(anthResponse.Content) == 0 {
		return "", nil
	}

	return anthResponse.Content[0].Text, nil
}
