// internal/app/features/randomize/routes.go
package randomize

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the trigger; mounted at /randomize-groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Serve)
	return r
}
