// Package prompts supplies the prompt configuration consumed by the
// interpretation pipeline. Prompt text and model parameters are authored
// and versioned outside this worker; the pipeline treats them as opaque,
// pre-validated inputs.
package prompts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AbhiraajV/brainlm/internal/llm"
)

// Config holds the model parameters and system prompt for one generation
// task.
type Config struct {
	// Model is the completion model identifier.
	Model string `json:"model"`

	// Temperature is the sampling temperature passed to the model.
	Temperature float64 `json:"temperature"`

	// ResponseFormat is an optional response-format tag. When empty, the
	// pipeline defaults to a generic structured-object format.
	ResponseFormat string `json:"response_format,omitempty"`

	// System is the system-role prompt text.
	System string `json:"system"`
}

const defaultInterpretationSystem = `You are a thoughtful interpreter of recorded life events. ` +
	`Given an event's content and the moment it occurred, write a long-form reflective ` +
	`interpretation of what the event may mean for the person who recorded it: themes, ` +
	`emotional undercurrents, and connections worth noticing. ` +
	`Respond with a JSON object of the form {"interpretation": "..."} where the ` +
	`interpretation is between 200 and 15000 characters.`

// DefaultInterpretation returns the built-in prompt configuration for the
// event interpretation task.
func DefaultInterpretation() Config {
	return Config{
		Model:          "gpt-4o-mini",
		Temperature:    0.7,
		ResponseFormat: llm.ResponseFormatJSONObject,
		System:         defaultInterpretationSystem,
	}
}

// LoadFromFile reads a prompt configuration from the given JSON file.
// Missing model parameters fall back to the built-in defaults; the system
// prompt is required.
func LoadFromFile(path string) (Config, error) {
	defaults := DefaultInterpretation()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read prompt file: %w", err)
	}

	cfg := Config{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse prompt file: %w", err)
	}

	if cfg.System == "" {
		return Config{}, fmt.Errorf("prompt file %s has no system prompt", path)
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.ResponseFormat == "" {
		cfg.ResponseFormat = defaults.ResponseFormat
	}

	return cfg, nil
}
