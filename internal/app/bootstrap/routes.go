// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	authapifeature "github.com/dalemusser/folio/internal/app/features/authapi"
	healthfeature "github.com/dalemusser/folio/internal/app/features/health"
	postapifeature "github.com/dalemusser/folio/internal/app/features/postapi"
	profileapifeature "github.com/dalemusser/folio/internal/app/features/profileapi"
	projectapifeature "github.com/dalemusser/folio/internal/app/features/projectapi"
	postsstore "github.com/dalemusser/folio/internal/app/store/posts"
	profilestore "github.com/dalemusser/folio/internal/app/store/profile"
	projectstore "github.com/dalemusser/folio/internal/app/store/projects"
	"github.com/dalemusser/folio/internal/app/store/ratelimit"
	"github.com/dalemusser/folio/internal/app/store/sessions"
	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/apicors"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/jsonutil"
	"github.com/dalemusser/folio/internal/app/system/media"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Every endpoint is JSON. Two client kinds share the same routes:
//   - API clients authenticate with "Authorization: Bearer <token>" and
//     are exempt from CSRF (no cookies involved)
//   - the admin browser carries the token in a signed session cookie and
//     goes through gorilla/csrf
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores and the media library shared across features.
	users := userstore.New(deps.MongoDatabase)
	sessionStore := sessions.New(deps.MongoDatabase, appCfg.SessionMaxAge)
	rateLimitStore := ratelimit.New(
		deps.MongoDatabase,
		appCfg.RateLimitLoginAttempts,
		appCfg.RateLimitLoginWindow,
		appCfg.RateLimitLoginLockout,
	)
	posts := postsstore.New(deps.MongoDatabase)
	projects := projectstore.New(deps.MongoDatabase)
	profiles := profilestore.New(deps.MongoDatabase)
	mediaLib := media.New(deps.FileStorage, logger)

	// Tokens are resolved against the sessions collection on every
	// request so revocations and disabled accounts apply immediately.
	sessionMgr.SetResolver(&authapifeature.Resolver{
		Users:    users,
		Sessions: sessionStore,
	})

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(sessionMgr.Authenticate)

	// CSRF protection for cookie-carrying browser requests. Bearer
	// requests skip it: the token never travels in a cookie, so there is
	// nothing for a cross-site request to ride on.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("folio_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			jsonutil.Forbidden(w, "CSRF token invalid or missing")
		})),
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
	csrfMiddleware := func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if auth.BearerToken(req) != "" {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	}

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Uploaded media (local storage only). S3 deployments serve media
	// straight from the bucket/CDN URLs stored on each document.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// JSON API.
	authHandler := authapifeature.NewHandler(users, sessionStore, rateLimitStore, sessionMgr, logger)
	postHandler := postapifeature.NewHandler(posts, mediaLib, logger)
	projectHandler := projectapifeature.NewHandler(projects, mediaLib, logger)
	profileHandler := profileapifeature.NewHandler(profiles, mediaLib, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apicors.Middleware())
		r.Use(csrfMiddleware)

		// Browser clients fetch their CSRF token here before mutating.
		r.Get("/csrf", func(w http.ResponseWriter, req *http.Request) {
			jsonutil.OK(w, map[string]any{"csrf_token": csrf.Token(req)})
		})

		r.Mount("/auth", authapifeature.Routes(authHandler, sessionMgr))
		r.Mount("/posts", postapifeature.Routes(postHandler, sessionMgr))
		r.Mount("/projects", projectapifeature.Routes(projectHandler, sessionMgr))
		r.Mount("/profile", profileapifeature.Routes(profileHandler, sessionMgr))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.NotFound(w, "not found")
	})

	return r, nil
}
