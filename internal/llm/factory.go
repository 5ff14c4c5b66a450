package llm

import (
	"fmt"
)

// NewProvider returns an initialized provider instance for the specified
// provider name.
func NewProvider(name string, config Config) (CompletionProvider, error) {
	switch name {
	case ProviderOpenAI:
		return NewOpenAIProvider(config), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(config), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", name)
	}
}
