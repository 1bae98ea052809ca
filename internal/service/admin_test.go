package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-labs/veridex/internal/embedding"
	"github.com/veridex-labs/veridex/internal/parser"
	"github.com/veridex-labs/veridex/internal/repository"
	"github.com/veridex-labs/veridex/internal/vectorindex"
)

func newAdminFixture(t *testing.T) (*IngestService, *AdminService, *vectorindex.Index) {
	t.Helper()
	provider := embedding.NewHashProvider(embedding.DefaultHashDimensions)
	ix, err := vectorindex.New(provider.Dimension(),
		vectorindex.WithPersistence(&vectorindex.Persistence{Dir: t.TempDir()}))
	require.NoError(t, err)
	docs := repository.NewMemoryDocumentRepository()
	ingest := NewIngestService(parser.NewRegistry(nil), provider, ix, docs, nil, ChunkingConfig{})
	return ingest, NewAdminService(docs, ix), ix
}

func TestAdminStats(t *testing.T) {
	ingest, admin, _ := newAdminFixture(t)
	ctx := context.Background()

	_, err := ingest.Ingest(ctx, IngestInput{OwnerID: "A", Filename: "a.txt", Data: []byte("speeding fine issued")})
	require.NoError(t, err)
	_, err = ingest.Ingest(ctx, IngestInput{OwnerID: "A", Filename: "b.txt", Data: []byte("parking fine issued")})
	require.NoError(t, err)

	stats, err := admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 2, stats.LiveChunks)
	assert.Equal(t, embedding.DefaultHashDimensions, stats.Dimension)
	assert.True(t, stats.UnsavedChange)
}

func TestAdminRebuildCompactsAndSnapshots(t *testing.T) {
	ingest, admin, ix := newAdminFixture(t)
	ctx := context.Background()

	res, err := ingest.Ingest(ctx, IngestInput{OwnerID: "A", Filename: "a.txt", Data: []byte("speeding fine issued")})
	require.NoError(t, err)
	_, err = ingest.Ingest(ctx, IngestInput{OwnerID: "A", Filename: "b.txt", Data: []byte("parking fine issued")})
	require.NoError(t, err)

	require.NoError(t, ingest.Delete(ctx, res.DocID))
	assert.Equal(t, 2, ix.Len())

	result, err := admin.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 1, result.Remaining)
	assert.False(t, ix.Dirty(), "rebuild snapshots the compacted state")
}

func TestAdminListDocumentsScoped(t *testing.T) {
	ingest, admin, _ := newAdminFixture(t)
	ctx := context.Background()

	_, err := ingest.Ingest(ctx, IngestInput{OwnerID: "A", Filename: "a.txt", Data: []byte("one")})
	require.NoError(t, err)
	_, err = ingest.Ingest(ctx, IngestInput{OwnerID: "B", Filename: "b.txt", Data: []byte("two")})
	require.NoError(t, err)

	all, err := admin.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := admin.ListDocuments(ctx, "A")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "A", scoped[0].OwnerID)
}
