// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages server-side bearer-token sessions in MongoDB.
type Store struct {
	c      *mongo.Collection
	maxAge time.Duration
}

// New creates a session Store. maxAge controls how long newly minted
// sessions live; expired documents are pruned by the TTL index and the
// background sweep.
func New(db *mongo.Database, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &Store{c: db.Collection("sessions"), maxAge: maxAge}
}

// GenerateToken mints a random URL-safe bearer token.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Create mints a new session for the user and inserts it.
func (s *Store) Create(ctx context.Context, userID, ip, userAgent string) (models.Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return models.Session{}, err
	}

	now := time.Now().UTC()
	sess := models.Session{
		ID:        primitive.NewObjectID(),
		Token:     token,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.maxAge),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// GetByToken retrieves an unexpired session by token.
func (s *Store) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&sess)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("session not found")
		}
		return nil, err
	}
	return &sess, nil
}

// Delete removes a session by token (logout).
func (s *Store) Delete(ctx context.Context, token string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"token": token})
	return err
}

// DeleteByUser removes all sessions for a user (logout everywhere).
func (s *Store) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteExpired removes sessions past their expiry. The TTL index handles
// this too; the background sweep keeps test and local deployments tidy
// where TTL monitors run infrequently.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByUser retrieves all unexpired sessions for a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	cursor, err := s.c.Find(ctx, bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Session
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActive counts unexpired sessions.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"expires_at": bson.M{"$gt": time.Now()},
	})
}
