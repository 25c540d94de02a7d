// internal/app/features/stats/routes.go
package stats

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the stats router, mounted under
// /projects/{projectID}/stats.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/states", h.ServeStates)
	r.Get("/matrix", h.ServeMatrix)
	r.Get("/completers", h.ServeCompleters)
	r.Get("/distribution", h.ServeDistribution)
	r.Get("/upcoming", h.ServeUpcoming)
	return r
}
