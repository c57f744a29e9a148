// Package projectapi provides the JSON endpoints for portfolio
// projects: public listing, the featured strip, and admin CRUD with
// screenshot gallery management.
package projectapi

import (
	"net/http"
	"strconv"
	"time"

	projectstore "github.com/dalemusser/folio/internal/app/store/projects"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/media"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes caps image uploads at 10 MB.
const maxUploadBytes = 10 << 20

const defaultPageSize = 20

// Handler handles project API requests.
type Handler struct {
	projects *projectstore.Store
	media    *media.Library
	logger   *zap.Logger
}

// NewHandler creates a projectapi handler.
func NewHandler(projects *projectstore.Store, mediaLib *media.Library, logger *zap.Logger) *Handler {
	return &Handler{projects: projects, media: mediaLib, logger: logger}
}

// List handles GET /.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := projectstore.ListFilter{
		Status:     normalize.QueryParam(q.Get("status")),
		Complexity: normalize.QueryParam(q.Get("complexity")),
		Technology: normalize.QueryParam(q.Get("technology")),
	}
	if v := q.Get("featured"); v != "" {
		featured := v == "true"
		filter.Featured = &featured
	}

	limit := int64(defaultPageSize)
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	var skip int64
	if v, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && v > 1 {
		skip = (v - 1) * limit
	}

	projects, err := h.projects.List(r.Context(), filter, limit, skip)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		jsonutil.InternalError(w, "failed to list projects")
		return
	}
	jsonutil.OK(w, map[string]any{"projects": projects})
}

// Featured handles GET /featured: up to three featured projects.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListFeatured(r.Context())
	if err != nil {
		h.logger.Error("failed to list featured projects", zap.Error(err))
		jsonutil.InternalError(w, "failed to list projects")
		return
	}
	jsonutil.OK(w, map[string]any{"projects": projects})
}

// Get handles GET /{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetByPublicID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"project": project})
}

type projectInput struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	Technologies     []string            `json:"technologies"`
	Links            models.ProjectLinks `json:"links"`
	Status           string              `json:"status"`
	Complexity       string              `json:"complexity"`
	Featured         bool                `json:"featured"`
	ProjectDate      time.Time           `json:"project_date"`
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in projectInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	project, err := h.projects.Create(r.Context(), projectstore.CreateInput{
		Title:            in.Title,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Technologies:     in.Technologies,
		Links:            in.Links,
		Status:           in.Status,
		Complexity:       in.Complexity,
		Featured:         in.Featured,
		ProjectDate:      in.ProjectDate,
	})
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	h.logger.Info("project created", zap.String("project_id", project.PublicID))
	jsonutil.Created(w, map[string]any{"project": project})
}

// Update handles PATCH /{id}. Absent fields keep their stored values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title            *string              `json:"title"`
		Description      *string              `json:"description"`
		ShortDescription *string              `json:"short_description"`
		Technologies     *[]string            `json:"technologies"`
		Links            *models.ProjectLinks `json:"links"`
		Status           *string              `json:"status"`
		Complexity       *string              `json:"complexity"`
		Featured         *bool                `json:"featured"`
		ProjectDate      *time.Time           `json:"project_date"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	project, err := h.projects.Update(r.Context(), chi.URLParam(r, "id"), projectstore.UpdateInput{
		Title:            in.Title,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Technologies:     in.Technologies,
		Links:            in.Links,
		Status:           in.Status,
		Complexity:       in.Complexity,
		Featured:         in.Featured,
		ProjectDate:      in.ProjectDate,
	})
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"project": project})
}

// Delete handles DELETE /{id}. Cover image and all screenshots are
// discarded best-effort after the document is gone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	if !project.CoverImage.IsZero() {
		h.media.DiscardQuietly(r.Context(), project.CoverImage.Path)
	}
	for _, shot := range project.Screenshots {
		h.media.DiscardQuietly(r.Context(), shot.Path)
	}

	h.logger.Info("project deleted", zap.String("project_id", project.PublicID))
	jsonutil.OK(w, map[string]any{"message": "project deleted"})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.projects.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute project stats", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute stats")
		return
	}
	jsonutil.OK(w, map[string]any{"stats": stats})
}

// UploadCover handles POST /{id}/cover.
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.uploadFromForm(w, r)
	if !ok {
		return
	}

	old, err := h.projects.SetCoverImage(r.Context(), chi.URLParam(r, "id"), ref)
	if err != nil {
		h.media.DiscardQuietly(r.Context(), ref.Path)
		jsonutil.FromError(w, err)
		return
	}
	if !old.IsZero() {
		h.media.DiscardQuietly(r.Context(), old.Path)
	}

	jsonutil.OK(w, map[string]any{"cover_image": ref})
}

// AddScreenshot handles POST /{id}/screenshots: uploads an image and
// appends it to the gallery.
func (h *Handler) AddScreenshot(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.uploadFromForm(w, r)
	if !ok {
		return
	}

	shot := models.Screenshot{URL: ref.URL, Path: ref.Path}
	if err := h.projects.AddScreenshot(r.Context(), chi.URLParam(r, "id"), shot); err != nil {
		h.media.DiscardQuietly(r.Context(), ref.Path)
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"screenshot": shot})
}

// RemoveScreenshot handles DELETE /{id}/screenshots: removes the first
// gallery entry matching the URL in the body and discards its asset.
func (h *Handler) RemoveScreenshot(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URL string `json:"url"`
	}
	if err := jsonutil.Decode(r, &in); err != nil || in.URL == "" {
		jsonutil.BadRequest(w, "url is required")
		return
	}

	removed, err := h.projects.RemoveScreenshot(r.Context(), chi.URLParam(r, "id"), in.URL)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	h.media.DiscardQuietly(r.Context(), removed.Path)

	jsonutil.OK(w, map[string]any{"message": "screenshot removed"})
}

// uploadFromForm reads the multipart "file" field and stores it under
// the projects folder. On failure it writes the error response and
// returns ok=false.
func (h *Handler) uploadFromForm(w http.ResponseWriter, r *http.Request) (models.MediaRef, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonutil.BadRequest(w, "invalid multipart form or file too large")
		return models.MediaRef{}, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, "file field is required")
		return models.MediaRef{}, false
	}
	defer file.Close()

	ref, err := h.media.Upload(r.Context(), "projects", header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		jsonutil.FromError(w, err)
		return models.MediaRef{}, false
	}
	return ref, true
}
