package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localrivet/gomcp/server"

	"github.com/AbhiraajV/brainlm/internal/errortypes"
	"github.com/AbhiraajV/brainlm/internal/eventstore"
	"github.com/AbhiraajV/brainlm/internal/tools"
	"github.com/AbhiraajV/brainlm/internal/vector"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPWorkerToolServer implements the WorkerToolServer interface
// for handling MCP tool calls related to events and interpretations.
type MCPWorkerToolServer struct {
	store       eventstore.Store
	interpreter Interpreter
	embedder    vector.Embedder
	mcpServer   *server.Server
}

// NewWorkerToolServer creates a new MCPWorkerToolServer instance.
func NewWorkerToolServer(store eventstore.Store, interpreter Interpreter, embedder vector.Embedder) *MCPWorkerToolServer {
	return &MCPWorkerToolServer{
		store:       store,
		interpreter: interpreter,
		embedder:    embedder,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPWorkerToolServer) Initialize() error {
	slog.Info("Initializing MCP Worker Tool Server")

	if s.store == nil || s.interpreter == nil || s.embedder == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	// Create the MCP server
	srv := server.NewServer("brainlm")

	// Register interpret_event tool
	srv = srv.Tool(tools.ToolInterpretEvent, "Generate and store an interpretation for a recorded event",
		s.handleInterpretEvent)

	// Register record_event tool
	srv = srv.Tool(tools.ToolRecordEvent, "Record a new event for later interpretation",
		s.handleRecordEvent)

	// Register search_interpretations tool
	srv = srv.Tool(tools.ToolSearchInterpretations, "Find stored interpretations similar to a query",
		s.handleSearchInterpretations)

	s.mcpServer = srv
	slog.Info("MCP Worker Tool Server initialized successfully", "tool_count", 3)
	return nil
}

// Start starts the MCP server on the specified transport.
func (s *MCPWorkerToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting MCP Worker Tool Server")

	// Start the server using stdio transport
	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPWorkerToolServer) Stop() error {
	slog.Info("Stopping MCP Worker Tool Server")
	// The server will exit when stdin is closed
	return nil
}

// handleInterpretEvent handles the interpret_event MCP tool call.
func (s *MCPWorkerToolServer) handleInterpretEvent(ctx *server.Context, req tools.InterpretEventRequest) (tools.InterpretEventResponse, error) {
	slog.Info("Processing interpret_event request", "event_id", req.EventID)

	response := tools.InterpretEventResponse{
		Status: "success",
	}

	if strings.TrimSpace(req.EventID) == "" {
		err := errortypes.ValidationError(errors.New("event_id cannot be empty"), "invalid interpret_event request")
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.ErrorKind = string(errortypes.ErrorTypeValidation)
		response.Error = err.Error()
		return response, nil
	}

	result, err := s.interpreter.Run(context.Background(), req.EventID)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.ErrorKind = string(errortypes.TypeOf(err))
		response.Error = err.Error()
		return response, nil
	}

	response.InterpretationID = result.InterpretationID
	response.Skipped = result.Skipped
	response.SkipReason = result.SkipReason

	if result.Skipped {
		slog.Info("Interpretation already existed", "event_id", req.EventID, "interpretation_id", result.InterpretationID)
	} else {
		slog.Info("Successfully interpreted event", "event_id", req.EventID, "interpretation_id", result.InterpretationID)
	}

	return response, nil
}

// handleRecordEvent handles the record_event MCP tool call.
func (s *MCPWorkerToolServer) handleRecordEvent(ctx *server.Context, req tools.RecordEventRequest) (tools.RecordEventResponse, error) {
	slog.Info("Processing record_event request", "user_id", req.UserID, "content_length", len(req.Content))

	response := tools.RecordEventResponse{
		Status: "success",
	}

	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Content) == "" {
		err := errortypes.ValidationError(errors.New("user_id and content are required"), "invalid record_event request")
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			err = errortypes.ValidationError(err, "occurred_at must be an RFC 3339 timestamp")
			errortypes.LogError(nil, err)
			response.Status = "error"
			response.Error = err.Error()
			return response, nil
		}
		occurredAt = parsed.UTC()
	}

	eventID := uuid.NewString()
	err := s.store.AddEvent(&eventstore.Event{
		ID:         eventID,
		UserID:     req.UserID,
		Content:    req.Content,
		OccurredAt: occurredAt,
	})
	if err != nil {
		err = errortypes.PersistenceError(err, "failed to record event").
			WithField("user_id", req.UserID)
		errortypes.LogError(nil, err)
		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.EventID = eventID
	slog.Info("Successfully recorded event", "event_id", eventID)

	return response, nil
}

// handleSearchInterpretations handles the search_interpretations MCP tool call.
func (s *MCPWorkerToolServer) handleSearchInterpretations(ctx *server.Context, req tools.SearchInterpretationsRequest) (tools.SearchInterpretationsResponse, error) {
	slog.Info("Processing search_interpretations request", "query", req.Query, "limit", req.Limit)

	response := tools.SearchInterpretationsResponse{
		Status: "success",
	}

	// Set default limit if not specified
	limit := req.Limit
	if limit <= 0 {
		limit = tools.DefaultSearchLimit
		slog.Debug("Using default limit for search_interpretations", "limit", limit)
	}

	// Create embedding for query
	queryEmbedding, err := s.embedder.CreateEmbedding(req.Query)
	if err != nil {
		err = errortypes.EmbeddingError(err, "failed to create embedding for query").
			WithField("query", req.Query)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	results, err := s.store.SearchSimilar(queryEmbedding, limit)
	if err != nil {
		err = errortypes.PersistenceError(err, "failed to search interpretations").
			WithField("limit", limit)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Error = err.Error()
		return response, nil
	}

	response.Results = results
	slog.Info("Successfully searched interpretations", "count", len(results))

	return response, nil
}
