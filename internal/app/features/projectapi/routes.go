package projectapi

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the project endpoints.
//
// When mounted at /api/projects:
//   - GET    /api/projects                  - list projects
//   - GET    /api/projects/featured         - up to three featured projects
//   - GET    /api/projects/{id}             - one project
//   - POST   /api/projects                  - create (admin)
//   - PATCH  /api/projects/{id}             - partial update (admin)
//   - DELETE /api/projects/{id}             - delete (admin)
//   - POST   /api/projects/{id}/cover       - replace cover image (admin)
//   - POST   /api/projects/{id}/screenshots - add a screenshot (admin)
//   - DELETE /api/projects/{id}/screenshots - remove a screenshot by URL (admin)
//   - GET    /api/projects/stats            - collection summary (admin)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/featured", h.Featured)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireAdmin)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/cover", h.UploadCover)
		r.Post("/{id}/screenshots", h.AddScreenshot)
		r.Delete("/{id}/screenshots", h.RemoveScreenshot)
	})

	return r
}
