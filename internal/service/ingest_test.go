package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-labs/veridex/internal/domain"
	"github.com/veridex-labs/veridex/internal/embedding"
	"github.com/veridex-labs/veridex/internal/parser"
	"github.com/veridex-labs/veridex/internal/repository"
	"github.com/veridex-labs/veridex/internal/vectorindex"
)

// fakeRecognizer stands in for the OCR engine.
type fakeRecognizer struct {
	text string
}

func (f *fakeRecognizer) Available() bool           { return true }
func (f *fakeRecognizer) Recognize(_ []byte) string { return f.text }

// seqUUIDGen yields predictable document ids.
type seqUUIDGen struct {
	n int
}

func (g *seqUUIDGen) NewString() string {
	g.n++
	return fmt.Sprintf("doc-%03d", g.n)
}

// failingProvider errors on every call.
type failingProvider struct{}

func (p *failingProvider) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("provider down")
}
func (p *failingProvider) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("provider down")
}
func (p *failingProvider) Dimension() int { return 256 }

func newTestIngest(t *testing.T, recognizer parser.Recognizer) (*IngestService, *vectorindex.Index, *repository.MemoryDocumentRepository) {
	t.Helper()
	provider := embedding.NewHashProvider(embedding.DefaultHashDimensions)
	ix, err := vectorindex.New(provider.Dimension())
	require.NoError(t, err)
	docs := repository.NewMemoryDocumentRepository()
	svc := NewIngestServiceWithUUIDGen(
		parser.NewRegistry(recognizer), provider, ix, docs, nil,
		ChunkingConfig{MaxChars: 1000, Overlap: 200},
		&seqUUIDGen{},
	)
	return svc, ix, docs
}

// makeParagraph builds a paragraph of n nine-character words.
func makeParagraph(prefix string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%06d", prefix, i)
	}
	return strings.Join(words, " ")
}

func TestIngestLongTextProducesOverlappingChunks(t *testing.T) {
	svc, ix, docs := newTestIngest(t, nil)

	// two ~1,200-character paragraphs
	text := makeParagraph("aaa", 120) + "\n\n" + makeParagraph("bbb", 120)
	res, err := svc.Ingest(context.Background(), IngestInput{
		OwnerID: "owner-1", Filename: "statement.txt", Data: []byte(text),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.NumChunks)
	assert.False(t, res.Empty)
	assert.Equal(t, "text", res.ContentType)
	assert.Equal(t, 3, ix.Live())

	doc, err := docs.GetByID(context.Background(), res.DocID)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.NumChunks)
}

func TestIngestImageExtractsIdentifierViaOCR(t *testing.T) {
	recognizer := &fakeRecognizer{text: "Penalty notice issued in NSW.\n\nOffence No. 987654321 recorded on site."}
	svc, _, _ := newTestIngest(t, recognizer)

	res, err := svc.Ingest(context.Background(), IngestInput{
		OwnerID: "owner-1", Filename: "scan.png", Data: []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)

	assert.Equal(t, "987654321", res.DetectedIdentifier)
	assert.Equal(t, "NSW", res.DetectedRegion)
	assert.Equal(t, "image", res.ContentType)
	assert.False(t, res.Empty)
}

func TestIngestEmptyContentRecordsDocumentOnly(t *testing.T) {
	// image with no recognizer: OCR degrades to empty output
	svc, ix, docs := newTestIngest(t, nil)

	res, err := svc.Ingest(context.Background(), IngestInput{
		OwnerID: "owner-1", Filename: "scan.png", Data: []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)

	assert.True(t, res.Empty)
	assert.Zero(t, res.NumChunks)
	assert.Zero(t, ix.Len())

	doc, err := docs.GetByID(context.Background(), res.DocID)
	require.NoError(t, err)
	assert.Zero(t, doc.NumChunks)
}

func TestIngestUnsupportedExtension(t *testing.T) {
	svc, _, _ := newTestIngest(t, nil)

	_, err := svc.Ingest(context.Background(), IngestInput{
		OwnerID: "owner-1", Filename: "archive.tar.gz", Data: []byte("x"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestIngestValidation(t *testing.T) {
	svc, _, _ := newTestIngest(t, nil)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, IngestInput{Filename: "a.txt", Data: []byte("x")})
	assert.Error(t, err)

	_, err = svc.Ingest(ctx, IngestInput{OwnerID: "o", Data: []byte("x")})
	assert.Error(t, err)

	_, err = svc.Ingest(ctx, IngestInput{OwnerID: "o", Filename: "a.txt"})
	assert.Error(t, err)
}

func TestIngestEmbedFailureLeavesNoTrace(t *testing.T) {
	ix, err := vectorindex.New(256)
	require.NoError(t, err)
	docs := repository.NewMemoryDocumentRepository()
	svc := NewIngestService(parser.NewRegistry(nil), &failingProvider{}, ix, docs, nil, ChunkingConfig{})

	_, err = svc.Ingest(context.Background(), IngestInput{
		OwnerID: "owner-1", Filename: "note.txt", Data: []byte("some text"),
	})
	require.Error(t, err)

	assert.Zero(t, ix.Len())
	list, err := docs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngestCSVRowsBecomeChunks(t *testing.T) {
	svc, ix, _ := newTestIngest(t, nil)

	csv := "notice,region,amount\nNSW1234567,NSW,350\nQLD7654321,QLD,120\n"
	res, err := svc.Ingest(context.Background(), IngestInput{
		OwnerID: "owner-1", Filename: "notices.csv", Data: []byte(csv),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.NumChunks, "header plus two data rows")
	assert.Equal(t, 3, ix.Live())
}

func TestIngestCarriesCallerFieldsIntoMetadata(t *testing.T) {
	svc, ix, _ := newTestIngest(t, nil)
	provider := embedding.NewHashProvider(embedding.DefaultHashDimensions)
	search := NewSearchService(provider, ix)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, IngestInput{
		OwnerID: "owner-1", Filename: "note.txt",
		Data:  []byte("the defendant failed to appear at the hearing"),
		Extra: map[string]string{"matter": "m-42"},
	})
	require.NoError(t, err)

	out, err := search.Search(ctx, SearchInput{
		Query:  "failed to appear at the hearing",
		Filter: map[string]string{"matter": "m-42", "format": "text"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "m-42", out.Results[0].Metadata.Extra["matter"])

	out, err = search.Search(ctx, SearchInput{
		Query:  "failed to appear at the hearing",
		Filter: map[string]string{"matter": "m-99"},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
}

func TestDeleteRemovesFromSearch(t *testing.T) {
	svc, ix, docs := newTestIngest(t, nil)
	provider := embedding.NewHashProvider(embedding.DefaultHashDimensions)
	search := NewSearchService(provider, ix)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, IngestInput{
		OwnerID: "owner-1", Filename: "note.txt",
		Data: []byte("the defendant parked across two marked bays"),
	})
	require.NoError(t, err)

	out, err := search.Search(ctx, SearchInput{Query: "parked across two marked bays"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	require.NoError(t, svc.Delete(ctx, res.DocID))

	out, err = search.Search(ctx, SearchInput{Query: "parked across two marked bays"})
	require.NoError(t, err)
	assert.Empty(t, out.Results)

	doc, err := docs.GetByID(ctx, res.DocID)
	require.NoError(t, err)
	assert.True(t, doc.Deleted)
}

func TestDeleteMissingDocument(t *testing.T) {
	svc, _, _ := newTestIngest(t, nil)
	err := svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
