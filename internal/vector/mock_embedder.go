package vector

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// MockEmbedder is a deterministic implementation of the Embedder interface
// for tests and offline development. The same text always produces the
// same unit-length vector, and different texts almost always differ.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a new MockEmbedder with the specified dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &MockEmbedder{
		dimensions: dimensions,
	}
}

// Initialize sets up the embedder with any required configuration.
func (e *MockEmbedder) Initialize() error {
	return nil // No initialization needed for the mock embedder
}

// CreateEmbedding generates a deterministic pseudo-embedding by expanding
// the sha256 digest of the text across the requested dimensions.
func (e *MockEmbedder) CreateEmbedding(text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	digest := sha256.Sum256([]byte(text))
	block := digest[:]

	for i := 0; i < e.dimensions; i++ {
		// Re-hash whenever the current block is exhausted so long vectors
		// do not repeat the same 8 values.
		offset := (i * 4) % len(block)
		if i > 0 && offset == 0 {
			next := sha256.Sum256(block)
			block = next[:]
		}
		seed := binary.LittleEndian.Uint32(block[offset : offset+4])
		embedding[i] = float32(seed%2000)/1000.0 - 1.0
	}

	normalize(embedding)
	return embedding, nil
}

// normalize scales the embedding to unit length.
func normalize(embedding []float32) {
	var sumSquares float64
	for _, v := range embedding {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}

	magnitude := float32(math.Sqrt(sumSquares))
	for i := range embedding {
		embedding[i] /= magnitude
	}
}
