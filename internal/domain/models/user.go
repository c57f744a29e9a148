// internal/domain/models/user.go
package models

// Terminology: Identifiers
//   - PublicID / public id: The application-level UUID string (the "id" field)
//     used for all lookups through the API
//   - ObjectID (_id): MongoDB's native storage key, never exposed over HTTP

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can sign in to the admin area.
//
// Identity fields:
//   - Username: what the user types to log in (stored as entered)
//   - UsernameCI: case/diacritic-insensitive version for matching (folded)
//   - Email: contact email (stored lowercase, unique)
//   - Phone: contact phone (unique when present)
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID string             `bson:"id" json:"id"`

	Username   string `bson:"username" json:"username"`
	UsernameCI string `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string `bson:"email" json:"email"`   // lowercase
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Gender     string `bson:"gender,omitempty" json:"gender,omitempty"`

	PasswordHash string `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)

	Admin  bool   `bson:"admin" json:"admin"`
	Status string `bson:"status,omitempty" json:"status,omitempty"` // active, disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// IsValidStatus checks if a status value is valid.
func IsValidStatus(status string) bool {
	return status == StatusActive || status == StatusDisabled
}

// Session is a server-side bearer-token session.
// The token is opaque; API clients send it as "Authorization: Bearer <token>"
// and the admin browser carries it inside the signed session cookie.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Token     string             `bson:"token" json:"token"` // 32-byte random, URL-safe
	UserID    string             `bson:"user_id" json:"user_id"`
	IPAddress string             `bson:"ip_address,omitempty" json:"-"`
	UserAgent string             `bson:"user_agent,omitempty" json:"-"`

	// TTL expiration
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
