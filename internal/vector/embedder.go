// Package vector provides the embedding gateway interface and utilities
// for vector data within the BrainLM interpretation worker.
package vector

const (
	// DefaultEmbeddingDimensions defines the standard size of embedding vectors.
	// 1536 is the output size of OpenAI's text-embedding-3-small model.
	DefaultEmbeddingDimensions = 1536

	// DefaultEmbeddingModel is the embedding model used when none is configured.
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Embedder defines the interface for creating vector embeddings from text.
type Embedder interface {
	// CreateEmbedding converts text into a vector representation.
	CreateEmbedding(text string) ([]float32, error)

	// Initialize sets up the embedder with any required configuration.
	Initialize() error
}
