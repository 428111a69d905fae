// Package embedding provides the pluggable text-to-vector capability used by
// both ingestion and retrieval. The concrete backend is swappable; consumers
// depend only on the Embedder interface.
package embedding

import (
	"context"
	"errors"
	"math"

	"localfind/internal/config"
)

// ErrUnavailable reports that the embedding backend cannot be reached.
// Callers degrade to "retrieval unavailable" instead of failing a query.
var ErrUnavailable = errors.New("embedding capability unavailable")

// Embedder converts text into fixed-dimension dense vectors.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText embeds a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// EmbedTexts embeds a batch, preserving input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// New builds an Embedder for the configured provider.
func New(cfg config.LLMConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "ollama":
		return newOllama(cfg)
	case "openai":
		return newOpenAI(cfg)
	default:
		return nil, errors.New("unknown embedding provider: " + cfg.Provider)
	}
}

// Normalize scales vec to unit L2 norm in place so inner product equals
// cosine similarity. A zero vector is left untouched.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
