// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the task router. It is mounted under
// /projects/{projectID}/tasks; chi carries the projectID URL param
// across the mount boundary.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", h.ServeGet)
		r.Patch("/", h.ServeUpdate)
		r.Delete("/", h.ServeDelete)
	})
	return r
}
