package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veridex-labs/veridex/internal/domain"
)

// MemoryDocumentRepository is the document store used when no database is
// configured. Contents do not survive a restart; document metadata is then
// recoverable only from the index snapshot.
type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{docs: make(map[string]*domain.Document)}
}

func (r *MemoryDocumentRepository) Create(_ context.Context, d *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *d
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.docs[stored.ID] = &stored
	return nil
}

func (r *MemoryDocumentRepository) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	out := *d
	return &out, nil
}

func (r *MemoryDocumentRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*domain.Document
	for _, d := range r.docs {
		if d.Deleted || d.OwnerID != ownerID {
			continue
		}
		out := *d
		docs = append(docs, &out)
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (r *MemoryDocumentRepository) List(_ context.Context) ([]*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*domain.Document
	for _, d := range r.docs {
		if d.Deleted {
			continue
		}
		out := *d
		docs = append(docs, &out)
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (r *MemoryDocumentRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok || d.Deleted {
		return domain.ErrDocumentNotFound
	}
	d.Deleted = true
	return nil
}

func sortNewestFirst(docs []*domain.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
