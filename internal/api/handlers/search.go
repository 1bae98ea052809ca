package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veridex-labs/veridex/internal/api"
	"github.com/veridex-labs/veridex/internal/service"
)

// SearchServiceInterface runs filtered similarity search.
type SearchServiceInterface interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc SearchServiceInterface
}

func NewSearchHandler(svc SearchServiceInterface) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query  string            `json:"query"`
	TopK   int               `json:"top_k"`
	Filter map[string]string `json:"filter"`
}

// Search embeds the query and returns ranked chunks. An X-Owner-ID header
// scopes results to that owner.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.Search(r.Context(), service.SearchInput{
		OwnerID: r.Header.Get("X-Owner-ID"),
		Query:   req.Query,
		TopK:    req.TopK,
		Filter:  req.Filter,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, out)
}
