package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/veridex-labs/veridex/internal/chunker"
	"github.com/veridex-labs/veridex/internal/domain"
	"github.com/veridex-labs/veridex/internal/identifier"
	"github.com/veridex-labs/veridex/internal/parser"
	"github.com/veridex-labs/veridex/internal/telemetry"
)

// DocumentStoreInterface defines the repository interface for document persistence
type DocumentStoreInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error)
	List(ctx context.Context) ([]*domain.Document, error)
	SoftDelete(ctx context.Context, id string) error
}

// ChunkMirrorInterface defines the optional durable mirror for indexed chunks
type ChunkMirrorInterface interface {
	ReplaceChunks(ctx context.Context, docID string, chunks []domain.ChunkRecord, vectors [][]float32) error
	DeleteByDoc(ctx context.Context, docID string) (int64, error)
}

// EmbeddingProvider turns text into vectors. Satisfied by the providers in
// the embedding package.
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// ChunkIndex is the searchable view the ingest pipeline writes into.
type ChunkIndex interface {
	Add(vectors [][]float32, records []domain.ChunkRecord) ([]string, error)
	MarkDocumentDeleted(docID string) int
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestInput describes one file to ingest. Extra entries are carried into
// every chunk's metadata and participate in exact-match filtering.
type IngestInput struct {
	OwnerID  string
	Filename string
	Data     []byte
	Extra    map[string]string
}

// IngestResult summarizes what ingestion produced. Empty is set when
// parsing yielded no content at all; the document record still exists so
// the upload is visible and deletable.
type IngestResult struct {
	DocID              string `json:"doc_id"`
	NumChunks          int    `json:"num_chunks"`
	DetectedIdentifier string `json:"detected_identifier,omitempty"`
	DetectedRegion     string `json:"detected_region,omitempty"`
	ContentType        string `json:"content_type"`
	Empty              bool   `json:"empty"`
}

// ChunkingConfig tunes passage sizing.
type ChunkingConfig struct {
	MaxChars int
	Overlap  int
}

// IngestService runs the ingestion pipeline: parse, extract identifiers,
// chunk, embed, persist, index. The index add is the last step so a failure
// anywhere earlier leaves the searchable view untouched.
type IngestService struct {
	registry  *parser.Registry
	extractor *identifier.Extractor
	provider  EmbeddingProvider
	index     ChunkIndex
	docs      DocumentStoreInterface
	mirror    ChunkMirrorInterface
	chunking  ChunkingConfig
	uuidGen   UUIDGenerator
}

// NewIngestService creates a new IngestService. The mirror may be nil when
// no database is configured.
func NewIngestService(
	registry *parser.Registry,
	provider EmbeddingProvider,
	index ChunkIndex,
	docs DocumentStoreInterface,
	mirror ChunkMirrorInterface,
	chunking ChunkingConfig,
) *IngestService {
	if chunking.MaxChars <= 0 {
		chunking.MaxChars = chunker.DefaultMaxChars
	}
	if chunking.Overlap < 0 {
		chunking.Overlap = chunker.DefaultOverlap
	}
	return &IngestService{
		registry:  registry,
		extractor: identifier.New(),
		provider:  provider,
		index:     index,
		docs:      docs,
		mirror:    mirror,
		chunking:  chunking,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewIngestServiceWithUUIDGen creates an IngestService with a custom UUID
// generator (for testing).
func NewIngestServiceWithUUIDGen(
	registry *parser.Registry,
	provider EmbeddingProvider,
	index ChunkIndex,
	docs DocumentStoreInterface,
	mirror ChunkMirrorInterface,
	chunking ChunkingConfig,
	uuidGen UUIDGenerator,
) *IngestService {
	svc := NewIngestService(registry, provider, index, docs, mirror, chunking)
	svc.uuidGen = uuidGen
	return svc
}

// Ingest processes one file end to end.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		OwnerID:   input.OwnerID,
		Operation: "ingest",
	})
	defer span.End()

	if input.OwnerID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "owner_id is required")
	}
	if input.Filename == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "filename is required")
	}
	if len(input.Data) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "file is empty")
	}

	parsed, format, err := s.registry.Parse(input.Data, input.Filename)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	fullText := assembleText(parsed)
	ident := s.extractor.Extract(fullText)
	region := identifier.DetectRegion(fullText)

	doc := &domain.Document{
		ID:         s.uuidGen.NewString(),
		OwnerID:    input.OwnerID,
		Filename:   input.Filename,
		Format:     format,
		SizeBytes:  int64(len(input.Data)),
		Identifier: ident.Value,
		Region:     region,
	}

	chunks := s.buildChunks(doc, parsed, input.Extra)
	doc.NumChunks = len(chunks)

	if len(chunks) == 0 {
		// No extractable content. Record the document anyway so the upload
		// is visible; nothing reaches the index.
		if err := s.docs.Create(ctx, doc); err != nil {
			span.SetError(err)
			return nil, err
		}
		return &IngestResult{
			DocID:              doc.ID,
			DetectedIdentifier: ident.Value,
			DetectedRegion:     region,
			ContentType:        string(format),
			Empty:              true,
		}, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		span.SetError(err)
		return nil, err
	}
	if s.mirror != nil {
		if err := s.mirror.ReplaceChunks(ctx, doc.ID, chunks, vectors); err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	// Index add commits last: everything before it can fail without
	// leaving partial results in the searchable view.
	if _, err := s.index.Add(vectors, chunks); err != nil {
		span.SetError(err)
		return nil, err
	}

	return &IngestResult{
		DocID:              doc.ID,
		NumChunks:          len(chunks),
		DetectedIdentifier: ident.Value,
		DetectedRegion:     region,
		ContentType:        string(format),
	}, nil
}

// buildChunks turns parsed segments and tables into ordered chunk records.
// Text segments are windowed by the chunker; table rows become one chunk
// each so row-level facts stay intact. The detected format and any caller
// fields travel in the Extra map so filters can match on them.
func (s *IngestService) buildChunks(doc *domain.Document, parsed *parser.Result, callerExtra map[string]string) []domain.ChunkRecord {
	extra := map[string]string{"format": string(doc.Format)}
	for k, v := range callerExtra {
		extra[k] = v
	}

	var chunks []domain.ChunkRecord

	add := func(content string, page *int) {
		ordinal := len(chunks)
		chunks = append(chunks, domain.ChunkRecord{
			ChunkID:    domain.ChunkIDFor(doc.ID, ordinal),
			DocID:      doc.ID,
			OwnerID:    doc.OwnerID,
			Filename:   doc.Filename,
			Page:       page,
			Ordinal:    ordinal,
			Identifier: doc.Identifier,
			Region:     doc.Region,
			Content:    content,
			Extra:      extra,
		})
	}

	for _, seg := range parsed.Segments {
		for _, passage := range chunker.Chunk(seg.Text, s.chunking.MaxChars, s.chunking.Overlap) {
			add(passage, seg.Page)
		}
	}
	for _, table := range parsed.Tables {
		for _, row := range table.Rows {
			rendered := parser.RenderRow(row)
			if rendered == "" {
				continue
			}
			add(rendered, table.Page)
		}
	}
	return chunks
}

// Delete soft-deletes a document everywhere: the record, the mirror, and
// the searchable view.
func (s *IngestService) Delete(ctx context.Context, docID string) error {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Delete", telemetry.SpanAttributes{
		DocID:     docID,
		Operation: "delete",
	})
	defer span.End()

	if err := s.docs.SoftDelete(ctx, docID); err != nil {
		return err
	}
	if s.mirror != nil {
		if _, err := s.mirror.DeleteByDoc(ctx, docID); err != nil {
			span.SetError(err)
			return err
		}
	}
	s.index.MarkDocumentDeleted(docID)
	return nil
}

func assembleText(parsed *parser.Result) string {
	var b strings.Builder
	for _, seg := range parsed.Segments {
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	for _, table := range parsed.Tables {
		for _, row := range table.Rows {
			if rendered := parser.RenderRow(row); rendered != "" {
				b.WriteString(rendered)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
