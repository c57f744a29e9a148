package profileapi

import (
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the profile endpoints.
//
// When mounted at /api/profile:
//   - GET    /api/profile                - public profile (404 until published)
//   - GET    /api/profile/admin          - full profile, created on first read (admin)
//   - PUT    /api/profile/personal       - replace the personal section (admin)
//   - PUT    /api/profile/social-links   - replace social links (admin)
//   - PUT    /api/profile/experience     - replace experience (admin)
//   - PUT    /api/profile/skills         - replace skill groups (admin)
//   - PUT    /api/profile/technologies   - replace the technology list (admin)
//   - PUT    /api/profile/education      - replace education entries (admin)
//   - PUT    /api/profile/certifications - replace certifications (admin)
//   - PUT    /api/profile/stats          - replace headline stats (admin)
//   - PUT    /api/profile/published      - toggle public visibility (admin)
//   - POST   /api/profile/{image|cover|cv}   - replace a media slot (admin)
//   - DELETE /api/profile/{image|cover|cv}   - clear a media slot (admin)
func Routes(h *Handler, sm *auth.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireAdmin)
		r.Get("/admin", h.GetAdmin)
		r.Put("/personal", h.UpdatePersonal)
		r.Put("/social-links", h.UpdateSocialLinks)
		r.Put("/experience", h.UpdateExperience)
		r.Put("/skills", h.UpdateSkills)
		r.Put("/technologies", h.UpdateTechnologies)
		r.Put("/education", h.UpdateEducation)
		r.Put("/certifications", h.UpdateCertifications)
		r.Put("/stats", h.UpdateStats)
		r.Put("/published", h.SetPublished)
		for _, slot := range []string{"image", "cover", "cv"} {
			r.Post("/"+slot, h.UploadMedia(slot))
			r.Delete("/"+slot, h.DeleteMedia(slot))
		}
	})

	return r
}
