// Package embed provides embedding providers for document chunks and queries.
//
// The primary provider talks to a local Ollama instance. Initialization is
// lazy and collapsed through a single-flight guard so process startup never
// blocks on model loading. A deterministic hash-based fallback provider is
// always available for graceful degradation.
package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// DefaultInitTimeout bounds lazy provider initialization. Expired
	// initialization fails with ERR_301 and may be retried by a later call.
	DefaultInitTimeout = 3 * time.Minute

	// DefaultRequestTimeout bounds individual embedding requests.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultDimensions is the dimensionality of the default Ollama model.
	DefaultDimensions = 768

	// FallbackDimensions is the fixed dimensionality of the hash-based
	// fallback provider.
	FallbackDimensions = 256
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensionality.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Ready reports whether the provider can serve embeddings without
	// further initialization.
	Ready(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v // zero vector stays as-is
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
