// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Attempt tracks failed login attempts for one username.
type Attempt struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Key         string             `bson:"key"`          // folded username
	Count       int                `bson:"count"`        // failures in the current window
	WindowStart time.Time          `bson:"window_start"` // when the current window opened
	LockedUntil *time.Time         `bson:"locked_until"` // nil when not locked
	LastAttempt time.Time          `bson:"last_attempt"` // drives the TTL cleanup index
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// Store throttles login attempts per username. Lookups are fail-open: a
// database error never blocks a login, it only skips the throttle.
type Store struct {
	c           *mongo.Collection
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
}

func New(db *mongo.Database, maxAttempts int, window, lockout time.Duration) *Store {
	return &Store{
		c:           db.Collection("rate_limits"),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
	}
}

// CheckAllowed reports whether a login attempt for the username may
// proceed, how many attempts remain before lockout (-1 when locked),
// and when an active lockout expires.
func (s *Store) CheckAllowed(ctx context.Context, username string) (allowed bool, remaining int, lockedUntil *time.Time) {
	key := text.Fold(username)
	now := time.Now()

	var attempt Attempt
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&attempt)
	if err != nil {
		// No record, or a lookup error: fail open.
		return true, s.maxAttempts, nil
	}

	if attempt.LockedUntil != nil && now.Before(*attempt.LockedUntil) {
		return false, -1, attempt.LockedUntil
	}

	if now.After(attempt.WindowStart.Add(s.window)) {
		return true, s.maxAttempts, nil
	}

	remaining = s.maxAttempts - attempt.Count
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordFailure counts one failed login for the username and reports
// whether that failure tripped the lockout.
func (s *Store) RecordFailure(ctx context.Context, username string) (lockedOut bool, lockedUntil *time.Time) {
	key := text.Fold(username)
	now := time.Now()

	var attempt Attempt
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&attempt)
	switch {
	case err == mongo.ErrNoDocuments:
		attempt = Attempt{
			ID:          primitive.NewObjectID(),
			Key:         key,
			Count:       1,
			WindowStart: now,
			LastAttempt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	case err != nil:
		// Fail open.
		return false, nil
	case now.After(attempt.WindowStart.Add(s.window)):
		attempt.Count = 1
		attempt.WindowStart = now
		attempt.LockedUntil = nil
		attempt.LastAttempt = now
		attempt.UpdatedAt = now
	default:
		attempt.Count++
		attempt.LastAttempt = now
		attempt.UpdatedAt = now
	}

	if attempt.Count >= s.maxAttempts {
		until := now.Add(s.lockout)
		attempt.LockedUntil = &until
		lockedOut = true
		lockedUntil = &until
	}

	if err == mongo.ErrNoDocuments {
		_, _ = s.c.InsertOne(ctx, attempt)
	} else {
		_, _ = s.c.UpdateOne(ctx,
			bson.M{"_id": attempt.ID},
			bson.M{"$set": bson.M{
				"count":        attempt.Count,
				"window_start": attempt.WindowStart,
				"locked_until": attempt.LockedUntil,
				"last_attempt": attempt.LastAttempt,
				"updated_at":   attempt.UpdatedAt,
			}},
		)
	}

	return lockedOut, lockedUntil
}

// ClearOnSuccess resets the counter after a successful login.
func (s *Store) ClearOnSuccess(ctx context.Context, username string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"key": text.Fold(username)})
	return err
}

// DeleteStale removes records idle longer than maxIdle. The TTL index
// handles this too; the background sweep keeps local deployments tidy.
func (s *Store) DeleteStale(ctx context.Context, maxIdle time.Duration) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"last_attempt": bson.M{"$lt": time.Now().Add(-maxIdle)},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
