package service

import (
	"context"
	"strings"

	"github.com/veridex-labs/veridex/internal/domain"
	"github.com/veridex-labs/veridex/internal/telemetry"
)

// DefaultTopK is the result count when the caller does not specify one.
const DefaultTopK = 5

// SearchIndex is the read side of the vector index.
type SearchIndex interface {
	Search(query []float32, k int, filter map[string]string) []domain.SearchHit
}

// SearchInput describes one search request. Filter entries are matched
// exactly against chunk metadata; OwnerID, when set, becomes an owner_id
// filter entry.
type SearchInput struct {
	OwnerID string
	Query   string
	TopK    int
	Filter  map[string]string
}

// SearchOutput holds ranked results.
type SearchOutput struct {
	Results []domain.SearchHit `json:"results"`
}

// SearchService embeds queries and runs filtered similarity search.
type SearchService struct {
	provider EmbeddingProvider
	index    SearchIndex
}

func NewSearchService(provider EmbeddingProvider, index SearchIndex) *SearchService {
	return &SearchService{provider: provider, index: index}
}

// Search embeds the query and returns the top-k matching chunks.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		OwnerID:   input.OwnerID,
		Operation: "search",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	k := input.TopK
	if k <= 0 {
		k = DefaultTopK
	}

	filter := input.Filter
	if input.OwnerID != "" {
		if filter == nil {
			filter = map[string]string{}
		} else {
			merged := make(map[string]string, len(filter)+1)
			for key, v := range filter {
				merged[key] = v
			}
			filter = merged
		}
		filter["owner_id"] = input.OwnerID
	}
	if len(filter) == 0 {
		filter = nil
	}

	vector, err := s.provider.EmbedQuery(ctx, input.Query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &SearchOutput{Results: s.index.Search(vector, k, filter)}, nil
}
