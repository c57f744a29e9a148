// internal/app/store/users/userstore.go
package userstore

// Terminology: Identifiers
//   - PublicID / public id: The application-level UUID string (the "id" field)
//     used for all lookups through the API
//   - ObjectID (_id): MongoDB's native storage key, never exposed over HTTP

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Duplicate-identity errors surfaced by Create. Each carries Conflict so the
// JSON boundary maps it to 409 with a distinct message.
var (
	ErrDuplicateUsername = apperr.New(apperr.Conflict, "a user with this username already exists")
	ErrDuplicateEmail    = apperr.New(apperr.Conflict, "a user with this email already exists")
	ErrDuplicatePhone    = apperr.New(apperr.Conflict, "a user with this phone number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// CreateInput holds the fields for creating a new user.
type CreateInput struct {
	Username     string
	Email        string
	Phone        string
	Gender       string
	PasswordHash string
	Admin        bool
}

// Create inserts a new user after normalizing fields and checking for
// duplicate username (case/diacritic-insensitive), email, and phone.
// The pre-insert lookups give precise error messages; the unique indexes
// close the race two concurrent signups would otherwise win together.
func (s *Store) Create(ctx context.Context, input CreateInput) (models.User, error) {
	username := normalize.Username(input.Username)
	usernameCI := text.Fold(username)
	email := normalize.Email(input.Email)
	phone := normalize.Phone(input.Phone)

	if username == "" {
		return models.User{}, apperr.New(apperr.Invalid, "username is required")
	}
	if email == "" {
		return models.User{}, apperr.New(apperr.Invalid, "email is required")
	}

	if taken, err := s.exists(ctx, bson.M{"username_ci": usernameCI}); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, ErrDuplicateUsername
	}
	if taken, err := s.exists(ctx, bson.M{"email": email}); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, ErrDuplicateEmail
	}
	if phone != "" {
		if taken, err := s.exists(ctx, bson.M{"phone": phone}); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrDuplicatePhone
		}
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		PublicID:     uuid.NewString(),
		Username:     username,
		UsernameCI:   usernameCI,
		Email:        email,
		Phone:        phone,
		Gender:       input.Gender,
		PasswordHash: input.PasswordHash,
		Admin:        input.Admin,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupError(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// dupError maps a duplicate-key insert failure to the sentinel for the
// unique index that fired. Reached only when a concurrent signup wins the
// race between the pre-insert lookups and the insert; the server's E11000
// message names the index.
func dupError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "uniq_users_email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "uniq_users_phone"):
		return ErrDuplicatePhone
	default:
		return ErrDuplicateUsername
	}
}

func (s *Store) exists(ctx context.Context, filter bson.M) (bool, error) {
	err := s.c.FindOne(ctx, filter).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// GetByPublicID loads a user by public id.
func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"id": publicID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by case/diacritic-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	folded := text.Fold(normalize.Username(username))
	if err := s.c.FindOne(ctx, bson.M{"username_ci": folded}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by email address (case-insensitive).
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// SetAdmin sets the admin flag for a user.
func (s *Store) SetAdmin(ctx context.Context, publicID string, admin bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"id": publicID}, bson.M{"$set": bson.M{
		"admin":      admin,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("user not found")
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (s *Store) UpdatePassword(ctx context.Context, publicID string, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"id": publicID}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("user not found")
	}
	return nil
}

// Delete removes a user by public id.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, publicID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"id": publicID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
