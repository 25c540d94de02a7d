// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the users subrouter; mounted behind the bearer
// middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.ServeMe)
	r.Get("/me/task-count", h.ServeTaskCount)
	return r
}
