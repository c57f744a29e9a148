package postapi

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the post endpoints.
//
// When mounted at /api/posts:
//   - GET    /api/posts             - list posts (anonymous: published only)
//   - GET    /api/posts/{id}        - one post
//   - POST   /api/posts/{id}/views  - bump the view counter
//   - POST   /api/posts/{id}/likes  - bump the like counter
//   - POST   /api/posts             - create (admin)
//   - PATCH  /api/posts/{id}        - partial update (admin)
//   - DELETE /api/posts/{id}        - delete (admin)
//   - POST   /api/posts/{id}/cover  - replace cover image (admin)
//   - GET    /api/posts/stats       - collection summary (admin)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/{id}/views", h.IncrementViews)
	r.Post("/{id}/likes", h.IncrementLikes)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireAdmin)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/cover", h.UploadCover)
	})

	r.Get("/{id}", h.Get)

	return r
}
