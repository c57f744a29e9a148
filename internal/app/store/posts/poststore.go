// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// wordsPerMinute is the reading speed assumed for the reading-time estimate.
const wordsPerMinute = 200

// excerptLength is how many characters of the description become the excerpt.
const excerptLength = 150

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// ReadingTime estimates reading time in whole minutes, rounding up.
// Never returns less than 1, even for empty content.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt derives the list-view excerpt from the description: the first
// 150 characters with a trailing ellipsis, or the description unchanged
// when it already fits.
func Excerpt(description string) string {
	runes := []rune(description)
	if len(runes) <= excerptLength {
		return description
	}
	return string(runes[:excerptLength]) + "..."
}

// CreateInput holds the fields for creating a post.
type CreateInput struct {
	Title       string
	Description string
	Content     string
	Excerpt     string
	Category    string
	Tags        []string
	Published   bool
	Featured    bool
	AuthorID    string
	AuthorName  string
}

// Create inserts a new post. Content is sanitized, the category defaults
// when empty, and reading time is derived server-side. A supplied excerpt
// is stored as-is; an empty one is derived from the description.
func (s *Store) Create(ctx context.Context, input CreateInput) (models.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Post{}, apperr.New(apperr.Invalid, "title is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return models.Post{}, apperr.New(apperr.Invalid, "description is required")
	}
	content := htmlsanitize.Sanitize(input.Content)
	if strings.TrimSpace(content) == "" {
		return models.Post{}, apperr.New(apperr.Invalid, "content is required")
	}

	category := normalize.Category(input.Category)
	if category == "" {
		category = models.DefaultPostCategory
	}
	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = Excerpt(description)
	}

	now := time.Now().UTC()
	p := models.Post{
		ID:          primitive.NewObjectID(),
		PublicID:    uuid.NewString(),
		Title:       title,
		Description: description,
		Content:     content,
		Excerpt:     excerpt,
		Category:    category,
		Tags:        normalize.Tags(input.Tags),
		Published:   input.Published,
		Featured:    input.Featured,
		AuthorID:    input.AuthorID,
		AuthorName:  input.AuthorName,
		ReadingTime: ReadingTime(content),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListFilter narrows List results. Nil/zero fields are ignored.
type ListFilter struct {
	Published *bool
	Category  string
	Tag       string
	Featured  *bool
	AuthorID  string
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Published != nil {
		q["published"] = *f.Published
	}
	if f.Category != "" {
		q["category"] = normalize.Category(f.Category)
	}
	if f.Tag != "" {
		q["tags"] = normalize.Tag(f.Tag)
	}
	if f.Featured != nil {
		q["featured"] = *f.Featured
	}
	if f.AuthorID != "" {
		q["author_id"] = f.AuthorID
	}
	return q
}

// List retrieves posts matching the filter, newest first.
// limit <= 0 means no limit; skip supports offset pagination.
func (s *Store) List(ctx context.Context, filter ListFilter, limit, skip int64) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cursor, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Post
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountFiltered returns the number of posts matching the filter.
func (s *Store) CountFiltered(ctx context.Context, filter ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// GetByPublicID loads a post by public id.
func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"id": publicID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("post not found")
		}
		return nil, err
	}
	return &p, nil
}

// UpdateInput holds the fields for a partial post update.
// Nil pointers leave the stored value unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Content     *string
	Excerpt     *string
	Category    *string
	Tags        *[]string
	Published   *bool
	Featured    *bool
}

// Update applies a partial update to a post. Reading time is recomputed
// when content changes. A supplied excerpt is stored as-is; otherwise the
// excerpt is re-derived when the description changes.
func (s *Store) Update(ctx context.Context, publicID string, input UpdateInput) (*models.Post, error) {
	set := bson.M{"updated_at": time.Now().UTC()}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperr.New(apperr.Invalid, "title cannot be empty")
		}
		set["title"] = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperr.New(apperr.Invalid, "description cannot be empty")
		}
		set["description"] = description
		if input.Excerpt == nil {
			set["excerpt"] = Excerpt(description)
		}
	}
	if input.Excerpt != nil {
		excerpt := strings.TrimSpace(*input.Excerpt)
		if excerpt == "" {
			return nil, apperr.New(apperr.Invalid, "excerpt cannot be empty")
		}
		set["excerpt"] = excerpt
	}
	if input.Content != nil {
		content := htmlsanitize.Sanitize(*input.Content)
		if strings.TrimSpace(content) == "" {
			return nil, apperr.New(apperr.Invalid, "content cannot be empty")
		}
		set["content"] = content
		set["reading_time"] = ReadingTime(content)
	}
	if input.Category != nil {
		category := normalize.Category(*input.Category)
		if category == "" {
			category = models.DefaultPostCategory
		}
		set["category"] = category
	}
	if input.Tags != nil {
		set["tags"] = normalize.Tags(*input.Tags)
	}
	if input.Published != nil {
		set["published"] = *input.Published
	}
	if input.Featured != nil {
		set["featured"] = *input.Featured
	}

	var p models.Post
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"id": publicID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("post not found")
		}
		return nil, err
	}
	return &p, nil
}

// SetCoverImage replaces a post's cover image reference and returns the
// previous reference so the superseded asset can be discarded.
func (s *Store) SetCoverImage(ctx context.Context, publicID string, ref models.MediaRef) (models.MediaRef, error) {
	var before models.Post
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"id": publicID},
		bson.M{"$set": bson.M{
			"cover_image": ref,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.MediaRef{}, apperr.NotFoundf("post not found")
		}
		return models.MediaRef{}, err
	}
	return before.CoverImage, nil
}

// Delete removes a post and returns the deleted document so its media
// can be cleaned up. Returns not-found when no post matches.
func (s *Store) Delete(ctx context.Context, publicID string) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOneAndDelete(ctx, bson.M{"id": publicID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("post not found")
		}
		return nil, err
	}
	return &p, nil
}

// IncrementViews bumps the view counter atomically.
func (s *Store) IncrementViews(ctx context.Context, publicID string) error {
	return s.increment(ctx, publicID, "views")
}

// IncrementLikes bumps the like counter atomically.
func (s *Store) IncrementLikes(ctx context.Context, publicID string) error {
	return s.increment(ctx, publicID, "likes")
}

func (s *Store) increment(ctx context.Context, publicID, field string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"id": publicID},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("post not found")
	}
	return nil
}

// Stats summarizes the post collection.
type Stats struct {
	Total         int64 `bson:"total" json:"total"`
	Published     int64 `bson:"published" json:"published"`
	Drafts        int64 `bson:"drafts" json:"drafts"`
	TotalViews    int64 `bson:"total_views" json:"total_views"`
	TotalLikes    int64 `bson:"total_likes" json:"total_likes"`
	TotalComments int64 `bson:"total_comments" json:"total_comments"`
}

// GetStats computes the collection summary in a single aggregation pass.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	published := bson.M{"$cond": bson.A{"$published", 1, 0}}
	drafts := bson.M{"$cond": bson.A{"$published", 0, 1}}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total":          bson.M{"$sum": 1},
			"published":      bson.M{"$sum": published},
			"drafts":         bson.M{"$sum": drafts},
			"total_views":    bson.M{"$sum": "$views"},
			"total_likes":    bson.M{"$sum": "$likes"},
			"total_comments": bson.M{"$sum": "$comments"},
		}}},
	}

	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, err
	}
	defer cursor.Close(ctx)

	var results []Stats
	if err := cursor.All(ctx, &results); err != nil {
		return Stats{}, err
	}
	if len(results) == 0 {
		// Empty collection produces no group document.
		return Stats{}, nil
	}
	return results[0], nil
}
