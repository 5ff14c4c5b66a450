// Package brainlm provides the BrainLM interpretation worker: a service
// that turns recorded user events into long-form interpretations with
// vector embeddings, stored atomically alongside the events.
package brainlm

import (
	"context"
	"log/slog"

	"github.com/AbhiraajV/brainlm/internal/config"
	"github.com/AbhiraajV/brainlm/internal/errortypes"
	"github.com/AbhiraajV/brainlm/internal/eventstore"
	"github.com/AbhiraajV/brainlm/internal/llm"
	"github.com/AbhiraajV/brainlm/internal/pipeline"
	"github.com/AbhiraajV/brainlm/internal/prompts"
	"github.com/AbhiraajV/brainlm/internal/server"
	"github.com/AbhiraajV/brainlm/internal/telemetry"
	"github.com/AbhiraajV/brainlm/internal/vector"
)

// Config represents the configuration for the BrainLM worker.
type Config = config.Config

// Result is the outcome of one interpretation run.
type Result = pipeline.Result

// Worker represents the BrainLM interpretation worker.
type Worker struct {
	config     *config.Config
	store      eventstore.Store
	provider   llm.CompletionProvider
	embedder   vector.Embedder
	pipeline   *pipeline.Pipeline
	toolServer server.WorkerToolServer
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger // Logger for this Worker instance
}

// WorkerOptions defines the options for creating a new Worker.
type WorkerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewWorker creates a new BrainLM Worker with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
// If opts.Logger is nil, slog.Default() will be used.
func NewWorker(opts WorkerOptions) (*Worker, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for worker initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for worker initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for worker initialization")
		cfg = DefaultConfig()
	}

	store, provider, emb, prompt, err := CreateComponents(cfg, logger)
	if err != nil {
		// CreateComponents already logs the specific error
		logger.Error("Failed to create components during worker initialization", "error", err)
		return nil, err
	}

	metrics := telemetry.NewMetricsCollector()
	pipe := pipeline.New(store, provider, emb, prompt, nil, metrics)

	logger.Info("Initializing worker tool server component")
	mcpServer := server.NewWorkerToolServer(store, pipe, emb)
	err = mcpServer.Initialize() // Note: mcpServer.Initialize still uses global slog internally
	if err != nil {
		logger.Error("Failed to initialize MCP worker tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP worker tool server component")
	}

	logger.Info("BrainLM worker successfully initialized")
	return &Worker{
		config:     cfg,
		store:      store,
		provider:   provider,
		embedder:   emb,
		pipeline:   pipe,
		toolServer: mcpServer,
		metrics:    metrics,
		logger:     logger, // Store the resolved logger
	}, nil
}

// DefaultConfig returns the default configuration for the BrainLM worker.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Store.SQLitePath = config.DefaultSQLitePath
	cfg.LLM.Provider = llm.ProviderOpenAI
	cfg.Embedder.Provider = "mock"
	cfg.Embedder.Model = vector.DefaultEmbeddingModel
	cfg.Embedder.Dimensions = vector.DefaultEmbeddingDimensions
	cfg.Logging.Level = config.DefaultLogLevel
	cfg.Logging.Format = config.DefaultLogFormat
	return cfg
}

// Start starts the BrainLM worker service.
func (w *Worker) Start() error {
	w.logger.Info("Starting BrainLM worker service")
	return w.toolServer.Start()
}

// Stop stops the BrainLM worker service.
func (w *Worker) Stop() error {
	w.logger.Info("Stopping BrainLM worker service")
	err := w.toolServer.Stop()
	if err != nil {
		w.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	// Close the store
	w.logger.Info("Closing store")
	err = w.store.Close()
	if err != nil {
		w.logger.Error("Failed to close store", "error", err)
		return err
	}

	w.logger.Info("BrainLM worker service stopped")
	return nil
}

// Interpret runs the interpretation pipeline for the given event id.
func (w *Worker) Interpret(ctx context.Context, eventID string) (*Result, error) {
	return w.pipeline.Run(ctx, eventID)
}

// RecordEvent stores a new event and returns it with its assigned id.
func (w *Worker) RecordEvent(ev *eventstore.Event) error {
	w.logger.Debug("Recording event", "event_id", ev.ID, "user_id", ev.UserID)
	return w.store.AddEvent(ev)
}

// SearchInterpretations retrieves interpretations similar to the given query.
func (w *Worker) SearchInterpretations(query string, limit int) ([]string, error) {
	w.logger.Debug("Creating embedding for query", "query", query)
	queryEmbedding, err := w.embedder.CreateEmbedding(query)
	if err != nil {
		w.logger.Error("Failed to create embedding for query", "query", query, "error", err)
		return nil, err
	}

	w.logger.Debug("Searching for similar interpretations", "limit", limit)
	results, err := w.store.SearchSimilar(queryEmbedding, limit)
	if err != nil {
		w.logger.Error("Failed to search interpretations", "limit", limit, "error", err)
		return nil, err
	}

	w.logger.Info("Retrieved interpretations", "count", len(results))
	return results, nil
}

// GetStore returns the event store instance used by the worker.
func (w *Worker) GetStore() eventstore.Store {
	return w.store
}

// GetEmbedder returns the embedder instance used by the worker.
func (w *Worker) GetEmbedder() vector.Embedder {
	return w.embedder
}

// Metrics returns a snapshot of the worker's collected metrics.
func (w *Worker) Metrics() string {
	return w.metrics.Snapshot()
}

// CreateComponents creates and initializes the components of the BrainLM
// worker without creating a Worker instance. This is useful for callers
// that need direct access to the store, completion provider, and embedder.
func CreateComponents(cfg *Config, logger *slog.Logger) (eventstore.Store, llm.CompletionProvider, vector.Embedder, prompts.Config, error) {
	if logger == nil {
		logger = slog.Default()
		logger.Debug("CreateComponents called with nil logger, defaulting to slog.Default()")
	}

	// Initialize SQLite event store
	logger.Info("Initializing SQLite event store for CreateComponents", "path", cfg.Store.SQLitePath)
	store := eventstore.NewSQLiteStore()
	err := store.Initialize(cfg.Store.SQLitePath)
	if err != nil {
		logger.Error("Failed to initialize SQLite event store in CreateComponents", "path", cfg.Store.SQLitePath, "error", err)
		return nil, nil, nil, prompts.Config{}, errortypes.PersistenceError(err, "Failed to initialize SQLite event store")
	}

	// Initialize completion provider
	logger.Info("Initializing completion provider for CreateComponents", "provider", cfg.LLM.Provider)
	provider, err := llm.NewProvider(cfg.LLM.Provider, llm.Config{APIKey: cfg.LLM.ApiKey})
	if err != nil {
		logger.Error("Failed to initialize completion provider in CreateComponents", "provider", cfg.LLM.Provider, "error", err)
		return nil, nil, nil, prompts.Config{}, errortypes.ConfigError(err, "Failed to initialize completion provider")
	}

	// Load prompt configuration
	prompt := prompts.DefaultInterpretation()
	if cfg.Prompt.Path != "" {
		logger.Info("Loading prompt configuration for CreateComponents", "path", cfg.Prompt.Path)
		prompt, err = prompts.LoadFromFile(cfg.Prompt.Path)
		if err != nil {
			logger.Error("Failed to load prompt configuration in CreateComponents", "path", cfg.Prompt.Path, "error", err)
			return nil, nil, nil, prompts.Config{}, errortypes.ConfigError(err, "Failed to load prompt configuration")
		}
	}

	// Initialize embedder
	logger.Info("Initializing embedder for CreateComponents", "provider", cfg.Embedder.Provider, "dimensions", cfg.Embedder.Dimensions)
	var emb vector.Embedder
	dimensions := cfg.Embedder.Dimensions
	if dimensions <= 0 {
		dimensions = vector.DefaultEmbeddingDimensions
	}

	switch cfg.Embedder.Provider {
	case "openai":
		emb = vector.NewOpenAIEmbedder(vector.OpenAIEmbedderConfig{
			APIKey:     cfg.Embedder.ApiKey,
			Model:      cfg.Embedder.Model,
			Dimensions: dimensions,
		})
	case "mock", "":
		emb = vector.NewMockEmbedder(dimensions)
	default:
		logger.Warn("Unknown embedder provider in CreateComponents, using mock embedder", "provider", cfg.Embedder.Provider)
		emb = vector.NewMockEmbedder(dimensions)
	}

	if err := emb.Initialize(); err != nil {
		logger.Error("Failed to initialize embedder in CreateComponents", "error", err)
		return nil, nil, nil, prompts.Config{}, errortypes.ConfigError(err, "Failed to initialize embedder")
	}

	logger.Info("Components successfully initialized via CreateComponents")
	return store, provider, emb, prompt, nil
}
