// Package server provides the MCP server implementation for the BrainLM worker service.
package server

import (
	"context"

	"github.com/AbhiraajV/brainlm/internal/pipeline"
)

// WorkerToolServer defines the interface for the MCP server that handles
// event and interpretation tool calls from MCP clients.
type WorkerToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

// Interpreter runs the interpretation pipeline for one event id.
type Interpreter interface {
	Run(ctx context.Context, eventID string) (*pipeline.Result, error)
}
