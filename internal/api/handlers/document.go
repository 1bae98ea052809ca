package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridex-labs/veridex/internal/api"
	"github.com/veridex-labs/veridex/internal/domain"
	"github.com/veridex-labs/veridex/internal/service"
)

// IngestServiceInterface is the pipeline surface the document handler drives.
type IngestServiceInterface interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
	Delete(ctx context.Context, docID string) error
}

// DocumentReader lists and fetches document records.
type DocumentReader interface {
	ListDocuments(ctx context.Context, ownerID string) ([]*domain.Document, error)
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}

type DocumentHandler struct {
	ingest IngestServiceInterface
	reader DocumentReader
}

func NewDocumentHandler(ingest IngestServiceInterface, reader DocumentReader) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, reader: reader}
}

type DocumentResponse struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	SizeBytes  int64  `json:"size_bytes"`
	Identifier string `json:"identifier,omitempty"`
	Region     string `json:"region,omitempty"`
	NumChunks  int    `json:"num_chunks"`
	CreatedAt  string `json:"created_at"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:         d.ID,
		OwnerID:    d.OwnerID,
		Filename:   d.Filename,
		Format:     string(d.Format),
		SizeBytes:  d.SizeBytes,
		Identifier: d.Identifier,
		Region:     d.Region,
		NumChunks:  d.NumChunks,
		CreatedAt:  d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ownerFromRequest reads the owner id from the X-Owner-ID header, falling
// back to the owner_id form value for multipart uploads.
func ownerFromRequest(r *http.Request) string {
	if owner := r.Header.Get("X-Owner-ID"); owner != "" {
		return owner
	}
	return r.FormValue("owner_id")
}

// Upload ingests one file submitted as multipart form data under "file".
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			api.HandleError(w, domain.ErrOversizeUpload)
			return
		}
		api.Error(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			api.HandleError(w, domain.ErrOversizeUpload)
			return
		}
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	owner := ownerFromRequest(r)
	if owner == "" {
		api.Error(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	result, err := h.ingest.Ingest(r.Context(), service.IngestInput{
		OwnerID:  owner,
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, result)
}

// List returns non-deleted documents, scoped by X-Owner-ID when present.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.reader.ListDocuments(r.Context(), r.Header.Get("X-Owner-ID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentToResponse(d))
	}
	api.Success(w, http.StatusOK, out)
}

// Get returns one document by id.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.reader.GetDocument(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, documentToResponse(doc))
}

// Delete soft-deletes a document and drops its chunks from search.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ingest.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
