package handlers

import (
	"context"
	"net/http"

	"github.com/veridex-labs/veridex/internal/api"
	"github.com/veridex-labs/veridex/internal/service"
)

// AdminServiceInterface covers index maintenance and stats.
type AdminServiceInterface interface {
	Rebuild(ctx context.Context) (*service.RebuildResult, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

type AdminHandler struct {
	svc AdminServiceInterface
}

func NewAdminHandler(svc AdminServiceInterface) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Rebuild compacts the index, reclaiming logically deleted slots.
func (h *AdminHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Rebuild(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// Stats reports corpus and index counters.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}
