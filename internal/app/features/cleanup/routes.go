// internal/app/features/cleanup/routes.go
package cleanup

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /cleanup-expired-content.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Serve)
	return r
}
