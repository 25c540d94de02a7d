// internal/app/features/auth/routes.go
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the auth subrouter. Logout needs a resolved user, so
// the caller passes the bearer middleware; the other endpoints are the
// ways a caller obtains credentials in the first place.
func Routes(h *Handler, requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.ServeSignup)
	r.Post("/login", h.ServeLogin)
	r.Get("/refresh", h.ServeRefresh)
	r.With(requireUser).Post("/logout", h.ServeLogout)
	return r
}
