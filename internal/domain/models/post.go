// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaRef points at an asset held by the file storage backend.
// Path is the storage key (the "public id" needed to delete the asset later);
// URL is the public address persisted for rendering.
type MediaRef struct {
	URL  string `bson:"url" json:"url"`
	Path string `bson:"path" json:"-"`
}

// IsZero reports whether no asset is attached.
func (m MediaRef) IsZero() bool {
	return m.URL == "" && m.Path == ""
}

// Post is a blog article shown on the public site.
type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID string             `bson:"id" json:"id"`

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Content     string `bson:"content" json:"content"` // sanitized HTML
	Excerpt     string `bson:"excerpt" json:"excerpt"`

	CoverImage MediaRef `bson:"cover_image,omitempty" json:"cover_image,omitempty"`

	Category string   `bson:"category" json:"category"`
	Tags     []string `bson:"tags,omitempty" json:"tags,omitempty"`

	Published bool `bson:"published" json:"published"`
	Featured  bool `bson:"featured" json:"featured"`

	AuthorID   string `bson:"author_id" json:"author_id"`
	AuthorName string `bson:"author_name" json:"author_name"`

	// Denormalized counters, bumped atomically
	Views    int64 `bson:"views" json:"views"`
	Likes    int64 `bson:"likes" json:"likes"`
	Comments int64 `bson:"comments" json:"comments"`

	ReadingTime int `bson:"reading_time" json:"reading_time"` // minutes

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultPostCategory is used when a post is created without a category.
const DefaultPostCategory = "general"
