package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// DefaultHashDimensions keeps the offline index small while leaving enough
// buckets to separate unrelated passages.
const DefaultHashDimensions = 256

// HashProvider is a deterministic bag-of-words embedding backend. It lets
// the whole pipeline run offline and in tests: passages sharing vocabulary
// score higher under inner product, and identical text embeds identically.
type HashProvider struct {
	dimensions int
}

// NewHashProvider creates a HashProvider with the given dimension, or
// DefaultHashDimensions when non-positive.
func NewHashProvider(dimensions int) *HashProvider {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashProvider{dimensions: dimensions}
}

func (p *HashProvider) Dimension() int {
	return p.dimensions
}

func (p *HashProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.embed(text)
	}
	return vectors, nil
}

func (p *HashProvider) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	return p.embed(text), nil
}

func (p *HashProvider) embed(text string) []float32 {
	v := make([]float32, p.dimensions)
	words := strings.Fields(strings.ToLower(text))
	for i, word := range words {
		v[p.bucket(word)]++
		if i > 0 {
			// bigrams sharpen phrase matches
			v[p.bucket(words[i-1]+" "+word)] += 0.5
		}
	}
	return Normalize(v)
}

func (p *HashProvider) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(p.dimensions))
}
