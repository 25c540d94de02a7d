// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes returns the projects subrouter; mounted behind the bearer
// middleware. Task and stats routes nest under the same prefix but are
// owned by their own features.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{projectID}", h.ServeGet)
	r.Delete("/{projectID}", h.ServeDelete)

	r.Post("/{projectID}/members/{email}", h.ServeAddMember)
	r.Delete("/{projectID}/members/{email}", h.ServeRemoveMember)
	r.Post("/{projectID}/managers/{email}", h.ServePromote)
	r.Delete("/{projectID}/managers/{email}", h.ServeDemote)
	return r
}
