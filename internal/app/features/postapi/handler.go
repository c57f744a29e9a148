// Package postapi provides the JSON endpoints for blog posts: public
// reads of published posts and admin CRUD, counters, cover image
// management, and collection stats.
package postapi

import (
	"net/http"
	"strconv"

	poststore "github.com/dalemusser/folio/internal/app/store/posts"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/media"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes caps cover image uploads at 10 MB.
const maxUploadBytes = 10 << 20

// defaultPageSize is used when the client does not pass a limit.
const defaultPageSize = 20

// Handler handles post API requests.
type Handler struct {
	posts  *poststore.Store
	media  *media.Library
	logger *zap.Logger
}

// NewHandler creates a postapi handler.
func NewHandler(posts *poststore.Store, mediaLib *media.Library, logger *zap.Logger) *Handler {
	return &Handler{posts: posts, media: mediaLib, logger: logger}
}

// List handles GET /. Anonymous callers only see published posts; an
// authenticated user sees drafts too and may filter on published.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := poststore.ListFilter{
		Category: normalize.QueryParam(q.Get("category")),
		Tag:      normalize.QueryParam(q.Get("tag")),
	}

	if _, signedIn := auth.CurrentUser(r); signedIn {
		if v := q.Get("published"); v != "" {
			published := v == "true"
			filter.Published = &published
		}
	} else {
		published := true
		filter.Published = &published
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

	posts, err := h.posts.List(r.Context(), filter, limit, skip)
	if err != nil {
		h.logger.Error("failed to list posts", zap.Error(err))
		jsonutil.InternalError(w, "failed to list posts")
		return
	}
	total, err := h.posts.CountFiltered(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to count posts", zap.Error(err))
		jsonutil.InternalError(w, "failed to list posts")
		return
	}

	jsonutil.OK(w, map[string]any{
		"posts": posts,
		"total": total,
	})
}

// Get handles GET /{id}. Unpublished posts are only visible signed in.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByPublicID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	if !post.Published {
		if _, signedIn := auth.CurrentUser(r); !signedIn {
			jsonutil.NotFound(w, "post not found")
			return
		}
	}
	jsonutil.OK(w, map[string]any{"post": post})
}

// Create handles POST /.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Content     string   `json:"content"`
		Excerpt     string   `json:"excerpt"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
		Published   bool     `json:"published"`
		Featured    bool     `json:"featured"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	u, _ := auth.CurrentUser(r)
	post, err := h.posts.Create(r.Context(), poststore.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Category:    in.Category,
		Tags:        in.Tags,
		Published:   in.Published,
		Featured:    in.Featured,
		AuthorID:    u.ID,
		AuthorName:  u.Username,
	})
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	h.logger.Info("post created",
		zap.String("post_id", post.PublicID),
		zap.String("author_id", u.ID))
	jsonutil.Created(w, map[string]any{"post": post})
}

// Update handles PATCH /{id}. Absent fields keep their stored values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Content     *string   `json:"content"`
		Excerpt     *string   `json:"excerpt"`
		Category    *string   `json:"category"`
		Tags        *[]string `json:"tags"`
		Published   *bool     `json:"published"`
		Featured    *bool     `json:"featured"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), poststore.UpdateInput{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Category:    in.Category,
		Tags:        in.Tags,
		Published:   in.Published,
		Featured:    in.Featured,
	})
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"post": post})
}

// Delete handles DELETE /{id}. The cover image is discarded best-effort
// after the document is gone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	if !post.CoverImage.IsZero() {
		h.media.DiscardQuietly(r.Context(), post.CoverImage.Path)
	}

	h.logger.Info("post deleted", zap.String("post_id", post.PublicID))
	jsonutil.OK(w, map[string]any{"message": "post deleted"})
}

// IncrementViews handles POST /{id}/views.
func (h *Handler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.IncrementViews(r.Context(), chi.URLParam(r, "id")); err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"message": "view recorded"})
}

// IncrementLikes handles POST /{id}/likes.
func (h *Handler) IncrementLikes(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.IncrementLikes(r.Context(), chi.URLParam(r, "id")); err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"message": "like recorded"})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.posts.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute post stats", zap.Error(err))
		jsonutil.InternalError(w, "failed to compute stats")
		return
	}
	jsonutil.OK(w, map[string]any{"stats": stats})
}

// UploadCover handles POST /{id}/cover: stores the new image, persists
// the reference, then discards the old asset best-effort.
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
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

	ref, err := h.media.Upload(r.Context(), "posts", header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	old, err := h.posts.SetCoverImage(r.Context(), chi.URLParam(r, "id"), ref)
	if err != nil {
		// The post is gone; remove the orphan we just stored.
		h.media.DiscardQuietly(r.Context(), ref.Path)
		jsonutil.FromError(w, err)
		return
	}
	if !old.IsZero() {
		h.media.DiscardQuietly(r.Context(), old.Path)
	}

	jsonutil.OK(w, map[string]any{"cover_image": ref})
}
