package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AbhiraajV/brainlm/internal/config"
	"github.com/AbhiraajV/brainlm/internal/eventstore"
	"github.com/AbhiraajV/brainlm/internal/llm"
	"github.com/AbhiraajV/brainlm/internal/logger"
	"github.com/AbhiraajV/brainlm/internal/pipeline"
	"github.com/AbhiraajV/brainlm/internal/prompts"
	"github.com/AbhiraajV/brainlm/internal/server"
	"github.com/AbhiraajV/brainlm/internal/telemetry"
	"github.com/AbhiraajV/brainlm/internal/vector"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	eventID := flag.String("event", "", "interpret a single event id and exit instead of serving")
	flag.Parse()

	// Initialize logging first thing
	appLogger := setupLogging()

	appLogger.Info("BrainLM Worker - Starting...")

	// Load configuration
	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		logger.LogError(err)
		appLogger.Fatal("Failed to load configuration")
	}

	// Configure logging based on config
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	// Initialize the event store
	store := eventstore.NewSQLiteStore()
	storeLogger := appLogger.WithContext("store")

	err = store.Initialize(cfg.Store.SQLitePath)
	if err != nil {
		err = logger.PersistenceError(err, "Failed to initialize SQLite event store")
		logger.LogError(err)
		appLogger.Fatal("Failed to initialize SQLite event store")
	}
	defer store.Close()
	storeLogger.Info("SQLite event store initialized")

	// Initialize the completion provider
	provider, err := llm.NewProvider(cfg.LLM.Provider, llm.Config{APIKey: cfg.LLM.ApiKey})
	if err != nil {
		err = logger.ConfigError(err, "Failed to initialize completion provider")
		logger.LogError(err)
		appLogger.Fatal("Failed to initialize completion provider")
	}
	appLogger.WithContext("llm").Info("Completion provider initialized: %s", provider.Name())

	// Load prompt configuration
	prompt := prompts.DefaultInterpretation()
	if cfg.Prompt.Path != "" {
		prompt, err = prompts.LoadFromFile(cfg.Prompt.Path)
		if err != nil {
			err = logger.ConfigError(err, "Failed to load prompt configuration")
			logger.LogError(err)
			appLogger.Fatal("Failed to load prompt configuration")
		}
	}

	// Initialize the embedder
	emb := buildEmbedder(cfg)
	embLogger := appLogger.WithContext("embedder")

	err = emb.Initialize()
	if err != nil {
		err = logger.ConfigError(err, "Failed to initialize embedder")
		logger.LogError(err)
		appLogger.Fatal("Failed to initialize embedder")
	}
	embLogger.Info("Embedder initialized")

	metrics := telemetry.NewMetricsCollector()
	pipe := pipeline.New(store, provider, emb, prompt, appLogger, metrics)

	// One-shot mode: interpret a single event and exit.
	if *eventID != "" {
		runOnce(pipe, *eventID, appLogger, metrics)
		return
	}

	// Initialize the MCP server
	srv := server.NewWorkerToolServer(store, pipe, emb)
	srvLogger := appLogger.WithContext("server")

	err = srv.Initialize()
	if err != nil {
		err = logger.ConfigError(err, "Failed to initialize MCP server")
		logger.LogError(err)
		appLogger.Fatal("Failed to initialize MCP server")
	}
	srvLogger.Info("MCP server initialized")

	// Handle graceful shutdown
	setupSignalHandler(store, appLogger)

	// Start the MCP server (this will block until server is terminated)
	srvLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		err = logger.APIError(err, "MCP server failed")
		logger.LogError(err)
		appLogger.Fatal("Failed to start MCP server")
	}
}

// runOnce interprets one event and prints the outcome.
func runOnce(pipe *pipeline.Pipeline, eventID string, log *logger.Logger, metrics *telemetry.MetricsCollector) {
	result, err := pipe.Run(context.Background(), eventID)
	if err != nil {
		logger.LogError(err)
		log.Fatal("Interpretation failed for event %s", eventID)
	}

	if result.Skipped {
		fmt.Printf("skipped: interpretation %s already exists (%s)\n", result.InterpretationID, result.SkipReason)
	} else {
		fmt.Printf("created: interpretation %s\n", result.InterpretationID)
	}
	log.Debug("Metrics after run:\n%s", metrics.Snapshot())
}

// buildEmbedder selects the embedder implementation from configuration.
func buildEmbedder(cfg *config.Config) vector.Embedder {
	dimensions := cfg.Embedder.Dimensions
	if dimensions <= 0 {
		dimensions = vector.DefaultEmbeddingDimensions
	}

	if cfg.Embedder.Provider == "openai" {
		return vector.NewOpenAIEmbedder(vector.OpenAIEmbedderConfig{
			APIKey:     cfg.Embedder.ApiKey,
			Model:      cfg.Embedder.Model,
			Dimensions: dimensions,
		})
	}
	return vector.NewMockEmbedder(dimensions)
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	// Create default configuration
	config := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		config.Level = logger.ParseLevel(levelStr)
	}

	// Create and return logger
	appLogger := logger.New(config)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(store eventstore.Store, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		// Close the store to ensure all data is saved
		if err := store.Close(); err != nil {
			err = logger.PersistenceError(err, "Error closing store during shutdown")
			logger.LogError(err)
		} else {
			log.Info("Database closed successfully")
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
