// Package llm contains the completion gateway interface and provider
// implementations used to generate interpretation documents.
package llm

import (
	"context"
	"time"
)

const (
	// Provider constants
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	// Message roles
	RoleSystem = "system"
	RoleUser   = "user"

	// Response format hints. Providers that cannot enforce a format
	// ignore the hint; the pipeline validates the output either way.
	ResponseFormatJSONObject = "json_object"
	ResponseFormatText       = "text"

	// Default settings
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 4096
)

// Message is one entry in the ordered prompt sent to a provider.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest carries everything a provider needs for one call.
type CompletionRequest struct {
	Model          string
	Temperature    float64
	ResponseFormat string
	Messages       []Message
}

// CompletionProvider defines the interface for completion gateways.
// Complete returns the first choice's message text verbatim; an empty
// string with a nil error means the gateway produced no usable text.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds common configuration for completion providers.
type Config struct {
	APIKey  string
	BaseURL string // overridable for testing; defaults to the provider's endpoint
}
