package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridex-labs/veridex/internal/domain"
)

// DocumentRepository persists document records in PostgreSQL. It is the
// durable system of record; the vector index holds the searchable view.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx dbtx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, owner_id, filename, format, size_bytes, identifier, region, num_chunks, deleted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.OwnerID, d.Filename, string(d.Format), d.SizeBytes,
		nullableString(d.Identifier), nullableString(d.Region), d.NumChunks, d.Deleted, createdAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var format string
	var identifier, region *string
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, filename, format, size_bytes, identifier, region, num_chunks, deleted, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.OwnerID, &d.Filename, &format, &d.SizeBytes, &identifier, &region, &d.NumChunks, &d.Deleted, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	d.Format = domain.DocumentFormat(format)
	if identifier != nil {
		d.Identifier = *identifier
	}
	if region != nil {
		d.Region = *region
	}
	return &d, nil
}

// ListByOwner returns the owner's non-deleted documents, newest first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, filename, format, size_bytes, identifier, region, num_chunks, deleted, created_at
		 FROM documents WHERE owner_id = $1 AND NOT deleted ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

// List returns all non-deleted documents, newest first.
func (r *DocumentRepository) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, filename, format, size_bytes, identifier, region, num_chunks, deleted, created_at
		 FROM documents WHERE NOT deleted ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocumentRows(rows)
}

// SoftDelete flags a document as deleted. The row is kept so that chunk
// metadata in old snapshots can still be resolved.
func (r *DocumentRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE documents SET deleted = TRUE WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		var format string
		var identifier, region *string
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Filename, &format, &d.SizeBytes,
			&identifier, &region, &d.NumChunks, &d.Deleted, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Format = domain.DocumentFormat(format)
		if identifier != nil {
			d.Identifier = *identifier
		}
		if region != nil {
			d.Region = *region
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
