// internal/rag/embedder.go
package rag

import (
	"context"

	"github.com/mwiater/ragmill/internal/logging"
	"github.com/mwiater/ragmill/internal/ollama"
)

// Embedder turns text into a fixed-dimension vector via the embedding
// service. It owns the degrade-not-fail policy: on any transport failure or
// dimension mismatch it logs and returns a zero vector of the configured
// dimension, so downstream search always receives a well-formed vector.
type Embedder struct {
	client *ollama.Client
	model  string
	dim    int
}

// NewEmbedder constructs an Embedder for one model and deployment dimension.
func NewEmbedder(client *ollama.Client, model string, dim int) *Embedder {
	return &Embedder{client: client, model: model, dim: dim}
}

// Embed returns the embedding for text. It never fails: degraded calls yield
// a dimension-correct zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) []float64 {
	vec, err := e.client.Embeddings(ctx, e.model, text)
	if err != nil {
		logging.LogEvent("embedding failed, substituting zero vector: %v", err)
		return make([]float64, e.dim)
	}
	if len(vec) != e.dim {
		logging.LogEvent("embedding dimension mismatch: got %d, want %d; substituting zero vector", len(vec), e.dim)
		return make([]float64, e.dim)
	}
	return vec
}

// isZeroVector reports whether every component of v is zero, which marks a
// degraded placeholder produced by the fallback path.
func isZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
