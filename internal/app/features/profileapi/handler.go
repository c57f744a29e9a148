// Package profileapi provides the JSON endpoints for the site owner's
// profile. There is exactly one profile document; admin reads create it
// on first access and every update targets a single section so partial
// edits never clobber the rest.
package profileapi

import (
	"net/http"

	profilestore "github.com/dalemusser/folio/internal/app/store/profile"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/media"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

// maxUploadBytes caps profile media uploads at 20 MB (the CV can be a
// sizeable PDF).
const maxUploadBytes = 20 << 20

// Handler handles profile API requests.
type Handler struct {
	profiles *profilestore.Store
	media    *media.Library
	logger   *zap.Logger
}

// NewHandler creates a profileapi handler.
func NewHandler(profiles *profilestore.Store, mediaLib *media.Library, logger *zap.Logger) *Handler {
	return &Handler{profiles: profiles, media: mediaLib, logger: logger}
}

// Get handles GET /: the public view. An unpublished (or missing)
// profile reads as not found.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context())
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	if !profile.Published {
		jsonutil.NotFound(w, "profile not found")
		return
	}
	jsonutil.OK(w, map[string]any{"profile": profile})
}

// GetAdmin handles GET /admin: always returns the profile, creating an
// empty one on first access.
func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetOrCreate(r.Context())
	if err != nil {
		h.logger.Error("failed to load profile", zap.Error(err))
		jsonutil.InternalError(w, "failed to load profile")
		return
	}
	jsonutil.OK(w, map[string]any{"profile": profile})
}

// UpdatePersonal handles PUT /personal.
func (h *Handler) UpdatePersonal(w http.ResponseWriter, r *http.Request) {
	var in models.PersonalInfo
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdatePersonal(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateSocialLinks handles PUT /social-links.
func (h *Handler) UpdateSocialLinks(w http.ResponseWriter, r *http.Request) {
	var in models.SocialLinks
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateSocialLinks(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateExperience handles PUT /experience.
func (h *Handler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	var in models.Experience
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateExperience(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateSkills handles PUT /skills.
func (h *Handler) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	var in []models.SkillGroup
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateSkills(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateTechnologies handles PUT /technologies.
func (h *Handler) UpdateTechnologies(w http.ResponseWriter, r *http.Request) {
	var in []string
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateTechnologies(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateEducation handles PUT /education.
func (h *Handler) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	var in []models.Education
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateEducation(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateCertifications handles PUT /certifications.
func (h *Handler) UpdateCertifications(w http.ResponseWriter, r *http.Request) {
	var in []models.Certification
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateCertifications(r.Context(), in)
	h.respondSection(w, profile, err)
}

// UpdateStats handles PUT /stats.
func (h *Handler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileStats
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.UpdateStats(r.Context(), in)
	h.respondSection(w, profile, err)
}

// SetPublished handles PUT /published.
func (h *Handler) SetPublished(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Published bool `json:"published"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	profile, err := h.profiles.SetPublished(r.Context(), in.Published)
	h.respondSection(w, profile, err)
}

func (h *Handler) respondSection(w http.ResponseWriter, profile *models.Profile, err error) {
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"profile": profile})
}

/* ----------------------------- media endpoints ---------------------------- */

// mediaField binds a URL path segment to one profile media slot.
type mediaField struct {
	folder string
	set    func(*Handler, *http.Request, models.MediaRef) (models.MediaRef, error)
	clear  func(*Handler, *http.Request) (models.MediaRef, error)
}

var mediaFields = map[string]mediaField{
	"image": {
		folder: "profile",
		set: func(h *Handler, r *http.Request, ref models.MediaRef) (models.MediaRef, error) {
			return h.profiles.SetProfileImage(r.Context(), ref)
		},
		clear: func(h *Handler, r *http.Request) (models.MediaRef, error) {
			return h.profiles.ClearProfileImage(r.Context())
		},
	},
	"cover": {
		folder: "profile",
		set: func(h *Handler, r *http.Request, ref models.MediaRef) (models.MediaRef, error) {
			return h.profiles.SetCoverImage(r.Context(), ref)
		},
		clear: func(h *Handler, r *http.Request) (models.MediaRef, error) {
			return h.profiles.ClearCoverImage(r.Context())
		},
	},
	"cv": {
		folder: "documents",
		set: func(h *Handler, r *http.Request, ref models.MediaRef) (models.MediaRef, error) {
			return h.profiles.SetCV(r.Context(), ref)
		},
		clear: func(h *Handler, r *http.Request) (models.MediaRef, error) {
			return h.profiles.ClearCV(r.Context())
		},
	},
}

// UploadMedia returns a handler for POST on one media slot: store the
// new asset, persist the reference, then discard the old asset.
func (h *Handler) UploadMedia(slot string) http.HandlerFunc {
	field := mediaFields[slot]
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			jsonutil.BadRequest(w, "invalid multipart form or file too large")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			jsonutil.BadRequest(w, "file field is required")
			return
		}
		defer file.Close()

		ref, err := h.media.Upload(r.Context(), field.folder, header.Filename, header.Header.Get("Content-Type"), file)
		if err != nil {
			jsonutil.FromError(w, err)
			return
		}

		old, err := field.set(h, r, ref)
		if err != nil {
			h.media.DiscardQuietly(r.Context(), ref.Path)
			jsonutil.FromError(w, err)
			return
		}
		if !old.IsZero() {
			h.media.DiscardQuietly(r.Context(), old.Path)
		}

		jsonutil.OK(w, map[string]any{slot: ref})
	}
}

// DeleteMedia returns a handler for DELETE on one media slot.
func (h *Handler) DeleteMedia(slot string) http.HandlerFunc {
	field := mediaFields[slot]
	return func(w http.ResponseWriter, r *http.Request) {
		old, err := field.clear(h, r)
		if err != nil {
			jsonutil.FromError(w, err)
			return
		}
		if !old.IsZero() {
			h.media.DiscardQuietly(r.Context(), old.Path)
		}
		jsonutil.OK(w, map[string]any{"message": "removed"})
	}
}
