// Package authapi provides the JSON authentication endpoints: signup,
// login, logout, and the current-user lookup.
//
// Login returns the session token in the body for API clients and also
// sets the browser session cookie, so both transports work from one
// endpoint.
package authapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/folio/internal/app/store/ratelimit"
	"github.com/dalemusser/folio/internal/app/store/sessions"
	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/authutil"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/network"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Handler handles authentication API requests.
type Handler struct {
	users    *userstore.Store
	sessions *sessions.Store
	limiter  *ratelimit.Store
	sm       *auth.SessionManager
	logger   *zap.Logger
}

// NewHandler creates an authapi handler.
func NewHandler(users *userstore.Store, sessionStore *sessions.Store, limiter *ratelimit.Store, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		sessions: sessionStore,
		limiter:  limiter,
		sm:       sm,
		logger:   logger,
	}
}

// Resolver adapts the user and session stores to auth.TokenResolver.
type Resolver struct {
	Users    *userstore.Store
	Sessions *sessions.Store
}

// ResolveToken looks up the session token and returns its user, or nil
// for expired/revoked sessions and disabled accounts.
func (r *Resolver) ResolveToken(ctx context.Context, token string) *auth.SessionUser {
	sess, err := r.Sessions.GetByToken(ctx, token)
	if err != nil {
		return nil
	}
	u, err := r.Users.GetByPublicID(ctx, sess.UserID)
	if err != nil {
		return nil
	}
	if u.Status == models.StatusDisabled {
		return nil
	}
	return &auth.SessionUser{
		ID:       u.PublicID,
		Username: u.Username,
		Admin:    u.Admin,
	}
}

// userJSON shapes a user for API responses.
func userJSON(u *models.User) map[string]any {
	return map[string]any{
		"id":         u.PublicID,
		"username":   u.Username,
		"email":      u.Email,
		"admin":      u.Admin,
		"created_at": u.CreatedAt,
	}
}

// Signup handles POST /signup. The first account created becomes the
// admin; afterwards only an authenticated admin can create accounts.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Gender   string `json:"gender"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	count, err := h.users.Count(r.Context(), bson.M{})
	if err != nil {
		h.logger.Error("failed to count users", zap.Error(err))
		jsonutil.InternalError(w, "signup failed")
		return
	}
	firstUser := count == 0
	if !firstUser {
		u, ok := auth.CurrentUser(r)
		if !ok || !u.Admin {
			jsonutil.Forbidden(w, "only an admin can create accounts")
			return
		}
	}

	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		jsonutil.InternalError(w, "signup failed")
		return
	}

	user, err := h.users.Create(r.Context(), userstore.CreateInput{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		Gender:       in.Gender,
		PasswordHash: hash,
		Admin:        firstUser,
	})
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}

	h.logger.Info("user created",
		zap.String("user_id", user.PublicID),
		zap.Bool("admin", user.Admin))
	jsonutil.Created(w, map[string]any{"user": userJSON(&user)})
}

// Login handles POST /login. Failed attempts are throttled per username.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Username == "" || in.Password == "" {
		jsonutil.BadRequest(w, "username and password are required")
		return
	}

	allowed, _, lockedUntil := h.limiter.CheckAllowed(r.Context(), in.Username)
	if !allowed {
		h.logger.Warn("login throttled",
			zap.String("username", in.Username),
			zap.String("ip", network.GetClientIP(r)))
		resp := map[string]string{"error": "too many failed attempts, try again later"}
		if lockedUntil != nil {
			resp["locked_until"] = lockedUntil.UTC().Format(time.RFC3339)
		}
		jsonutil.JSON(w, http.StatusTooManyRequests, resp)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), in.Username)
	if err != nil || !authutil.CheckPassword(in.Password, user.PasswordHash) {
		h.limiter.RecordFailure(r.Context(), in.Username)
		jsonutil.Unauthorized(w, "invalid username or password")
		return
	}
	if user.Status == models.StatusDisabled {
		jsonutil.Forbidden(w, "account is disabled")
		return
	}

	if err := h.limiter.ClearOnSuccess(r.Context(), in.Username); err != nil {
		h.logger.Warn("failed to clear rate limit", zap.Error(err))
	}

	sess, err := h.sessions.Create(r.Context(), user.PublicID, network.GetClientIP(r), r.UserAgent())
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	if err := h.sm.IssueCookie(w, r, sess.Token); err != nil {
		h.logger.Warn("failed to set session cookie", zap.Error(err))
	}

	h.logger.Info("user logged in",
		zap.String("user_id", user.PublicID),
		zap.String("ip", sess.IPAddress))
	jsonutil.OK(w, map[string]any{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       userJSON(user),
	})
}

// Logout handles POST /logout: revokes the current session and clears
// the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	if err := h.sessions.Delete(r.Context(), u.Token); err != nil {
		h.logger.Warn("failed to delete session", zap.Error(err))
	}
	h.sm.ClearCookie(w, r)
	jsonutil.OK(w, map[string]any{"message": "logged out"})
}

// LogoutAll handles POST /logout-all: revokes every session of the
// current user.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	revoked, err := h.sessions.DeleteByUser(r.Context(), u.ID)
	if err != nil {
		h.logger.Error("failed to delete sessions", zap.Error(err))
		jsonutil.InternalError(w, "logout failed")
		return
	}
	h.sm.ClearCookie(w, r)
	jsonutil.OK(w, map[string]any{"revoked": revoked})
}

// Me handles GET /me: returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}
	user, err := h.users.GetByPublicID(r.Context(), u.ID)
	if err != nil {
		jsonutil.FromError(w, err)
		return
	}
	jsonutil.OK(w, map[string]any{"user": userJSON(user)})
}
