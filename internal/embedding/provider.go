// Package embedding maps text to fixed-dimension, L2-normalized vectors.
// Backends are interchangeable; the vector index binds to whichever
// dimension the active provider reports at creation time.
package embedding

import (
	"context"
	"math"
)

// Provider generates embedding vectors. EmbedBatch is order-preserving and
// one-to-one with its input.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Normalize scales a vector to unit L2 length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
