// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	profilestore "github.com/dalemusser/folio/internal/app/store/profile"
	projectstore "github.com/dalemusser/folio/internal/app/store/projects"
	"github.com/dalemusser/folio/internal/app/store/ratelimit"
	"github.com/dalemusser/folio/internal/app/store/sessions"
	"github.com/dalemusser/folio/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are
// served.
//
// There is no admin seeding step: the first account created through
// POST /api/auth/signup becomes the admin.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	db := deps.MongoDatabase
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.SessionCleanupJob(
		sessions.New(db, appCfg.SessionMaxAge), logger))
	taskRunner.Register(tasks.RateLimitCleanupJob(
		ratelimit.New(db, appCfg.RateLimitLoginAttempts, appCfg.RateLimitLoginWindow, appCfg.RateLimitLoginLockout), logger))
	taskRunner.Register(tasks.ProfileStatsSyncJob(
		profilestore.New(db), projectstore.New(db), logger))

	taskRunner.Start()
}
