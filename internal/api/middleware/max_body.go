package middleware

import (
	"net/http"

	"github.com/veridex-labs/veridex/internal/api"
)

// MaxBodyBytes caps request body size. Oversize declared lengths are
// rejected up front; chunked bodies are capped by MaxBytesReader and fail
// at read time inside the handler.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
