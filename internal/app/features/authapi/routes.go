package authapi

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the authentication endpoints.
//
// When mounted at /api/auth:
//   - POST /api/auth/signup     - create an account (first account, or admin)
//   - POST /api/auth/login      - exchange credentials for a session token
//   - POST /api/auth/logout     - revoke the current session
//   - POST /api/auth/logout-all - revoke all of the user's sessions
//   - GET  /api/auth/me         - the authenticated user
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Post("/logout", h.Logout)
		r.Post("/logout-all", h.LogoutAll)
		r.Get("/me", h.Me)
	})

	return r
}
