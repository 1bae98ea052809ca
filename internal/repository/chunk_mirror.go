package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/veridex-labs/veridex/internal/domain"
)

// ChunkMirrorRepository keeps a durable pgvector copy of indexed chunks.
// The in-memory index stays authoritative for search; the mirror exists so
// embeddings survive a host loss even between snapshots.
type ChunkMirrorRepository struct {
	db dbtx
}

func NewChunkMirrorRepository(pool *pgxpool.Pool) *ChunkMirrorRepository {
	return &ChunkMirrorRepository{db: pool}
}

func NewChunkMirrorRepositoryWithTx(tx dbtx) *ChunkMirrorRepository {
	return &ChunkMirrorRepository{db: tx}
}

// ReplaceChunks deletes existing mirrored chunks for a document and inserts
// the new set. Chunks and vectors are order-aligned.
func (r *ChunkMirrorRepository) ReplaceChunks(ctx context.Context, docID string, chunks []domain.ChunkRecord, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.ErrLengthMismatch
	}

	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE doc_id = $1`, docID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for i, c := range chunks {
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks
				(chunk_id, doc_id, owner_id, filename, page, ordinal, identifier, region, content, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			c.ChunkID,
			c.DocID,
			c.OwnerID,
			c.Filename,
			c.Page,
			c.Ordinal,
			nullableString(c.Identifier),
			nullableString(c.Region),
			c.Content,
			pgvector.NewVector(vectors[i]),
			now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByDoc removes all mirrored chunks of a document.
func (r *ChunkMirrorRepository) DeleteByDoc(ctx context.Context, docID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE doc_id = $1`, docID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountByDoc returns the number of mirrored chunks for a document.
func (r *ChunkMirrorRepository) CountByDoc(ctx context.Context, docID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM document_chunks WHERE doc_id = $1`, docID).Scan(&n)
	return n, err
}
