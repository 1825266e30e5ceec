// internal/app/features/trios/routes.go
package trios

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /trios.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{date}", h.ServeDate)
	return r
}
