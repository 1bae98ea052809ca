package service

import (
	"context"

	"github.com/veridex-labs/veridex/internal/domain"
	"github.com/veridex-labs/veridex/internal/telemetry"
)

// AdminIndex exposes the maintenance surface of the vector index.
type AdminIndex interface {
	Rebuild() int
	Len() int
	Live() int
	Dim() int
	Dirty() bool
	Persistent() bool
	Save(ctx context.Context) error
}

// Stats is a point-in-time view of the corpus and index.
type Stats struct {
	Documents     int  `json:"documents"`
	IndexSlots    int  `json:"index_slots"`
	LiveChunks    int  `json:"live_chunks"`
	Dimension     int  `json:"dimension"`
	UnsavedChange bool `json:"unsaved_changes"`
}

// RebuildResult reports one compaction run.
type RebuildResult struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

// AdminService covers document listing and index maintenance.
type AdminService struct {
	docs  DocumentStoreInterface
	index AdminIndex
}

func NewAdminService(docs DocumentStoreInterface, index AdminIndex) *AdminService {
	return &AdminService{docs: docs, index: index}
}

// ListDocuments returns non-deleted documents, scoped to an owner when one
// is given.
func (s *AdminService) ListDocuments(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	if ownerID != "" {
		return s.docs.ListByOwner(ctx, ownerID)
	}
	return s.docs.List(ctx)
}

// GetDocument returns one document by id.
func (s *AdminService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// Rebuild compacts the index, dropping logically deleted slots, and then
// snapshots the compacted state when persistence is configured.
func (s *AdminService) Rebuild(ctx context.Context) (*RebuildResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.Rebuild", telemetry.SpanAttributes{
		Operation: "rebuild",
	})
	defer span.End()

	removed := s.index.Rebuild()
	if s.index.Persistent() {
		if err := s.index.Save(ctx); err != nil {
			// Compaction itself succeeded; surface the persistence failure.
			span.SetError(err)
			return nil, err
		}
	}
	return &RebuildResult{Removed: removed, Remaining: s.index.Len()}, nil
}

// Stats reports corpus and index counters.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Documents:     len(docs),
		IndexSlots:    s.index.Len(),
		LiveChunks:    s.index.Live(),
		Dimension:     s.index.Dim(),
		UnsavedChange: s.index.Dirty(),
	}, nil
}
