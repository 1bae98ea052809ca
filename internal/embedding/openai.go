package embedding

import (
	"context"
	"errors"
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is the OpenAI model used for generating embeddings
	DefaultOpenAIModel = openai.SmallEmbedding3
	// DefaultOpenAIDimensions is the dimension reported by that model
	DefaultOpenAIDimensions = 1536

	// maxBatchSize bounds one CreateEmbeddings request
	maxBatchSize = 128
)

var (
	// ErrEmptyInput is returned when there is nothing to embed
	ErrEmptyInput = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when the API responds with vectors of
	// an unexpected dimension
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
)

// embeddingAPI is the slice of the OpenAI client we depend on, kept narrow
// for mocking.
type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string
	Model      openai.EmbeddingModel
	Dimensions int
}

// OpenAIProvider generates embeddings through the OpenAI API.
type OpenAIProvider struct {
	api        embeddingAPI
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIProvider creates a provider with defaults filled in.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultOpenAIDimensions
	}
	return &OpenAIProvider{
		api:        openai.NewClient(cfg.APIKey),
		model:      model,
		dimensions: dimensions,
	}
}

// Dimension returns the vector dimension this provider produces.
func (p *OpenAIProvider) Dimension() int {
	return p.dimensions
}

// EmbedBatch embeds texts in request-size batches, preserving input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := p.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// EmbedQuery embeds a single query text.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	vectors, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *OpenAIProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// the API documents index-annotated data; order by it rather than trust
	// response ordering
	data := make([]openai.Embedding, len(resp.Data))
	copy(data, resp.Data)
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) != p.dimensions {
			return nil, ErrWrongDimensions
		}
		vectors[i] = Normalize(d.Embedding)
	}
	return vectors, nil
}
