package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridex-labs/veridex/internal/api"
	"github.com/veridex-labs/veridex/internal/api/handlers"
	"github.com/veridex-labs/veridex/internal/api/middleware"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	SearchHandler   *handlers.SearchHandler
	AdminHandler    *handlers.AdminHandler
	MaxBodyBytes    int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 20 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Upload)
		r.Get("/", cfg.DocumentHandler.List)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
	})

	r.Post("/search", cfg.SearchHandler.Search)

	r.Post("/index/rebuild", cfg.AdminHandler.Rebuild)
	r.Get("/stats", cfg.AdminHandler.Stats)

	return r
}
