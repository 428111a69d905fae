package embedding

import (
	"context"
	"hash/fnv"
)

// Deterministic is a model-free Embedder that derives a unit vector from a
// hash of the text: the same text always embeds identically. It exists for
// tests and offline smoke runs; similarity between different texts carries
// no semantic meaning.
type Deterministic struct {
	dim int
}

// NewDeterministic returns a Deterministic embedder of the given dimension.
func NewDeterministic(dim int) *Deterministic {
	if dim <= 0 {
		dim = 384
	}
	return &Deterministic{dim: dim}
}

func (d *Deterministic) EmbedText(_ context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, d.dim)
	for i := range vec {
		seed = seed*1664525 + 1013904223 // LCG step
		vec[i] = float32(seed%2000)/1000.0 - 1.0
	}
	Normalize(vec)
	return vec, nil
}

func (d *Deterministic) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := d.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}
