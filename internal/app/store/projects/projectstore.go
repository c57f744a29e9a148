// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/app/system/normalize"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// featuredLimit caps how many projects the featured strip shows.
const featuredLimit = 3

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// CreateInput holds the fields for creating a project.
type CreateInput struct {
	Title            string
	Description      string
	ShortDescription string
	Technologies     []string
	Links            models.ProjectLinks
	Status           string
	Complexity       string
	Featured         bool
	ProjectDate      time.Time
}

// Create inserts a new project. Status defaults to completed and
// complexity to intermediate when left empty.
func (s *Store) Create(ctx context.Context, input CreateInput) (models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Project{}, apperr.New(apperr.Invalid, "title is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return models.Project{}, apperr.New(apperr.Invalid, "description is required")
	}

	status := normalize.Status(input.Status)
	if status == "" {
		status = models.ProjectCompleted
	}
	if !models.IsValidProjectStatus(status) {
		return models.Project{}, apperr.Invalidf("invalid status %q", status)
	}

	complexity := normalize.Status(input.Complexity)
	if complexity == "" {
		complexity = models.ComplexityIntermediate
	}
	if !models.IsValidComplexity(complexity) {
		return models.Project{}, apperr.Invalidf("invalid complexity %q", complexity)
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:               primitive.NewObjectID(),
		PublicID:         uuid.NewString(),
		Title:            title,
		Description:      description,
		ShortDescription: strings.TrimSpace(input.ShortDescription),
		Technologies:     normalize.Tags(input.Technologies),
		Links:            input.Links,
		Status:           status,
		Complexity:       complexity,
		Featured:         input.Featured,
		ProjectDate:      input.ProjectDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// ListFilter narrows List results. Nil/zero fields are ignored.
type ListFilter struct {
	Status     string
	Complexity string
	Featured   *bool
	Technology string
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.Complexity != "" {
		q["complexity"] = normalize.Status(f.Complexity)
	}
	if f.Featured != nil {
		q["featured"] = *f.Featured
	}
	if f.Technology != "" {
		q["technologies"] = normalize.Tag(f.Technology)
	}
	return q
}

// List retrieves projects matching the filter, newest first by project
// date with creation time as tie-breaker.
func (s *Store) List(ctx context.Context, filter ListFilter, limit, skip int64) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "project_date", Value: -1},
		{Key: "created_at", Value: -1},
	})
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

	var out []models.Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFeatured retrieves up to three featured projects, newest first.
func (s *Store) ListFeatured(ctx context.Context) ([]models.Project, error) {
	featured := true
	return s.List(ctx, ListFilter{Featured: &featured}, featuredLimit, 0)
}

// GetByPublicID loads a project by public id.
func (s *Store) GetByPublicID(ctx context.Context, publicID string) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"id": publicID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("project not found")
		}
		return nil, err
	}
	return &p, nil
}

// UpdateInput holds the fields for a partial project update.
// Nil pointers leave the stored value unchanged.
type UpdateInput struct {
	Title            *string
	Description      *string
	ShortDescription *string
	Technologies     *[]string
	Links            *models.ProjectLinks
	Status           *string
	Complexity       *string
	Featured         *bool
	ProjectDate      *time.Time
}

// Update applies a partial update to a project.
func (s *Store) Update(ctx context.Context, publicID string, input UpdateInput) (*models.Project, error) {
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
	}
	if input.ShortDescription != nil {
		set["short_description"] = strings.TrimSpace(*input.ShortDescription)
	}
	if input.Technologies != nil {
		set["technologies"] = normalize.Tags(*input.Technologies)
	}
	if input.Links != nil {
		set["links"] = *input.Links
	}
	if input.Status != nil {
		status := normalize.Status(*input.Status)
		if !models.IsValidProjectStatus(status) {
			return nil, apperr.Invalidf("invalid status %q", status)
		}
		set["status"] = status
	}
	if input.Complexity != nil {
		complexity := normalize.Status(*input.Complexity)
		if !models.IsValidComplexity(complexity) {
			return nil, apperr.Invalidf("invalid complexity %q", complexity)
		}
		set["complexity"] = complexity
	}
	if input.Featured != nil {
		set["featured"] = *input.Featured
	}
	if input.ProjectDate != nil {
		set["project_date"] = *input.ProjectDate
	}

	var p models.Project
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"id": publicID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("project not found")
		}
		return nil, err
	}
	return &p, nil
}

// SetCoverImage replaces a project's cover image reference and returns
// the previous reference so the superseded asset can be discarded.
func (s *Store) SetCoverImage(ctx context.Context, publicID string, ref models.MediaRef) (models.MediaRef, error) {
	var before models.Project
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
			return models.MediaRef{}, apperr.NotFoundf("project not found")
		}
		return models.MediaRef{}, err
	}
	return before.CoverImage, nil
}

// AddScreenshot appends a screenshot to a project's gallery.
func (s *Store) AddScreenshot(ctx context.Context, publicID string, shot models.Screenshot) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"id": publicID},
		bson.M{
			"$push": bson.M{"screenshots": shot},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("project not found")
	}
	return nil
}

// RemoveScreenshot removes the first gallery entry with the given URL and
// returns it so the stored asset can be discarded. When several entries
// share a URL, only one comes out per call. The write is guarded on the
// gallery still containing what the read saw, so a concurrent change
// retries rather than clobbering it.
func (s *Store) RemoveScreenshot(ctx context.Context, publicID, url string) (models.Screenshot, error) {
	for attempt := 0; attempt < 3; attempt++ {
		p, err := s.GetByPublicID(ctx, publicID)
		if err != nil {
			return models.Screenshot{}, err
		}

		idx := -1
		for i, shot := range p.Screenshots {
			if shot.URL == url {
				idx = i
				break
			}
		}
		if idx < 0 {
			return models.Screenshot{}, apperr.NotFoundf("screenshot not found")
		}

		removed := p.Screenshots[idx]
		remaining := make([]models.Screenshot, 0, len(p.Screenshots)-1)
		remaining = append(remaining, p.Screenshots[:idx]...)
		remaining = append(remaining, p.Screenshots[idx+1:]...)

		res, err := s.c.UpdateOne(ctx,
			bson.M{"id": publicID, "updated_at": p.UpdatedAt},
			bson.M{"$set": bson.M{
				"screenshots": remaining,
				"updated_at":  time.Now().UTC(),
			}},
		)
		if err != nil {
			return models.Screenshot{}, err
		}
		if res.MatchedCount > 0 {
			return removed, nil
		}
		// Lost the race, reload and retry.
	}
	return models.Screenshot{}, apperr.New(apperr.Conflict, "project changed concurrently, try again")
}

// Delete removes a project and returns the deleted document so its media
// can be cleaned up.
func (s *Store) Delete(ctx context.Context, publicID string) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOneAndDelete(ctx, bson.M{"id": publicID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("project not found")
		}
		return nil, err
	}
	return &p, nil
}

// Stats summarizes the project collection. The three status counts
// always sum to Total.
type Stats struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	InProgress   int64 `json:"in_progress"`
	Planned      int64 `json:"planned"`
	Beginner     int64 `json:"beginner"`
	Intermediate int64 `json:"intermediate"`
	Advanced     int64 `json:"advanced"`
	Featured     int64 `json:"featured"`
}

type facetCount struct {
	N int64 `bson:"n"`
}

type facetGroup struct {
	Key string `bson:"_id"`
	N   int64  `bson:"n"`
}

type facetResult struct {
	Total        []facetCount `bson:"total"`
	ByStatus     []facetGroup `bson:"by_status"`
	ByComplexity []facetGroup `bson:"by_complexity"`
	Featured     []facetCount `bson:"featured"`
}

// GetStats computes the collection summary with a single $facet
// aggregation instead of one query per counter.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{
				bson.M{"$count": "n"},
			},
			"by_status": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
			},
			"by_complexity": bson.A{
				bson.M{"$group": bson.M{"_id": "$complexity", "n": bson.M{"$sum": 1}}},
			},
			"featured": bson.A{
				bson.M{"$match": bson.M{"featured": true}},
				bson.M{"$count": "n"},
			},
		}}},
	}

	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, err
	}
	defer cursor.Close(ctx)

	var results []facetResult
	if err := cursor.All(ctx, &results); err != nil {
		return Stats{}, err
	}
	if len(results) == 0 {
		return Stats{}, nil
	}

	var stats Stats
	r := results[0]
	if len(r.Total) > 0 {
		stats.Total = r.Total[0].N
	}
	if len(r.Featured) > 0 {
		stats.Featured = r.Featured[0].N
	}
	for _, g := range r.ByStatus {
		switch g.Key {
		case models.ProjectCompleted:
			stats.Completed = g.N
		case models.ProjectInProgress:
			stats.InProgress = g.N
		case models.ProjectPlanned:
			stats.Planned = g.N
		}
	}
	for _, g := range r.ByComplexity {
		switch g.Key {
		case models.ComplexityBeginner:
			stats.Beginner = g.N
		case models.ComplexityIntermediate:
			stats.Intermediate = g.N
		case models.ComplexityAdvanced:
			stats.Advanced = g.N
		}
	}
	return stats, nil
}
