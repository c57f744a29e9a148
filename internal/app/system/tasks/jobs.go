// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	profilestore "github.com/dalemusser/folio/internal/app/store/profile"
	projectstore "github.com/dalemusser/folio/internal/app/store/projects"
	"github.com/dalemusser/folio/internal/app/store/ratelimit"
	"github.com/dalemusser/folio/internal/app/store/sessions"
	"go.uber.org/zap"
)

// SessionCleanupJob removes expired sessions. The TTL index does the
// heavy lifting in production; this keeps deployments without TTL
// monitors (and local dev) tidy.
func SessionCleanupJob(store *sessions.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "session-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			deleted, err := store.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("cleaned up expired sessions",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// RateLimitCleanupJob removes login-throttle records idle for a day.
func RateLimitCleanupJob(store *ratelimit.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "rate-limit-cleanup",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			deleted, err := store.DeleteStale(ctx, 24*time.Hour)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("cleaned up stale rate limit records",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// ProfileStatsSyncJob keeps the profile's projects-completed headline
// number in step with the projects collection.
func ProfileStatsSyncJob(profiles *profilestore.Store, projects *projectstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "profile-stats-sync",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			p, err := profiles.Get(ctx)
			if err != nil {
				// No profile yet: nothing to sync.
				return nil
			}

			stats, err := projects.GetStats(ctx)
			if err != nil {
				return err
			}

			if int64(p.Stats.ProjectsCompleted) == stats.Completed {
				return nil
			}

			updated := p.Stats
			updated.ProjectsCompleted = int(stats.Completed)
			if _, err := profiles.UpdateStats(ctx, updated); err != nil {
				return err
			}
			logger.Info("synced profile project stats",
				zap.Int64("completed", stats.Completed))
			return nil
		},
	}
}
