// internal/app/store/profile/profilestore.go
package profilestore

import (
	"context"
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

// singletonFilter matches the one profile document. The unique index on
// the singleton field makes a second document impossible to insert.
var singletonFilter = bson.M{"singleton": true}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// GetOrCreate returns the profile document, creating an empty one on
// first call. Concurrent first calls converge on the same document via
// the upsert.
func (s *Store) GetOrCreate(ctx context.Context) (*models.Profile, error) {
	now := time.Now().UTC()
	var p models.Profile
	err := s.c.FindOneAndUpdate(ctx,
		singletonFilter,
		bson.M{
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"id":         uuid.NewString(),
				"singleton":  true,
				"published":  false,
				"created_at": now,
				"updated_at": now,
			},
		},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the profile document without creating one.
func (s *Store) Get(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, singletonFilter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("profile not found")
		}
		return nil, err
	}
	return &p, nil
}

// setSection writes one section of the profile document and returns the
// updated profile. Every narrow update funnels through here so the
// singleton filter and updated_at bump stay uniform.
func (s *Store) setSection(ctx context.Context, set bson.M) (*models.Profile, error) {
	set["updated_at"] = time.Now().UTC()
	var p models.Profile
	err := s.c.FindOneAndUpdate(ctx,
		singletonFilter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("profile not found")
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePersonal replaces the personal info section.
func (s *Store) UpdatePersonal(ctx context.Context, info models.PersonalInfo) (*models.Profile, error) {
	info.Email = normalize.Email(info.Email)
	info.Phone = normalize.Phone(info.Phone)
	return s.setSection(ctx, bson.M{"personal": info})
}

// UpdateSocialLinks replaces the social links section.
func (s *Store) UpdateSocialLinks(ctx context.Context, links models.SocialLinks) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"social_links": links})
}

// UpdateExperience replaces the experience section.
func (s *Store) UpdateExperience(ctx context.Context, exp models.Experience) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"experience": exp})
}

// UpdateSkills replaces the skills section.
func (s *Store) UpdateSkills(ctx context.Context, skills []models.SkillGroup) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"skills": skills})
}

// UpdateTechnologies replaces the technologies list.
func (s *Store) UpdateTechnologies(ctx context.Context, techs []string) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"technologies": normalize.Tags(techs)})
}

// UpdateEducation replaces the education section.
func (s *Store) UpdateEducation(ctx context.Context, entries []models.Education) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"education": entries})
}

// UpdateCertifications replaces the certifications section.
func (s *Store) UpdateCertifications(ctx context.Context, entries []models.Certification) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"certifications": entries})
}

// UpdateStats replaces the headline stats section.
func (s *Store) UpdateStats(ctx context.Context, stats models.ProfileStats) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"stats": stats})
}

// SetPublished flips the public visibility of the profile.
func (s *Store) SetPublished(ctx context.Context, published bool) (*models.Profile, error) {
	return s.setSection(ctx, bson.M{"published": published})
}

// setMedia replaces one media field and returns the previous reference
// so the superseded asset can be discarded.
func (s *Store) setMedia(ctx context.Context, field string, ref models.MediaRef) (models.MediaRef, error) {
	var before models.Profile
	err := s.c.FindOneAndUpdate(ctx,
		singletonFilter,
		bson.M{"$set": bson.M{
			field:        ref,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.MediaRef{}, apperr.NotFoundf("profile not found")
		}
		return models.MediaRef{}, err
	}
	switch field {
	case "profile_image":
		return before.ProfileImage, nil
	case "cover_image":
		return before.CoverImage, nil
	case "cv":
		return before.CV, nil
	}
	return models.MediaRef{}, nil
}

// SetProfileImage replaces the profile image and returns the previous reference.
func (s *Store) SetProfileImage(ctx context.Context, ref models.MediaRef) (models.MediaRef, error) {
	return s.setMedia(ctx, "profile_image", ref)
}

// SetCoverImage replaces the cover image and returns the previous reference.
func (s *Store) SetCoverImage(ctx context.Context, ref models.MediaRef) (models.MediaRef, error) {
	return s.setMedia(ctx, "cover_image", ref)
}

// SetCV replaces the CV document and returns the previous reference.
func (s *Store) SetCV(ctx context.Context, ref models.MediaRef) (models.MediaRef, error) {
	return s.setMedia(ctx, "cv", ref)
}

// ClearProfileImage detaches the profile image and returns the old reference.
func (s *Store) ClearProfileImage(ctx context.Context) (models.MediaRef, error) {
	return s.setMedia(ctx, "profile_image", models.MediaRef{})
}

// ClearCoverImage detaches the cover image and returns the old reference.
func (s *Store) ClearCoverImage(ctx context.Context) (models.MediaRef, error) {
	return s.setMedia(ctx, "cover_image", models.MediaRef{})
}

// ClearCV detaches the CV and returns the old reference.
func (s *Store) ClearCV(ctx context.Context) (models.MediaRef, error) {
	return s.setMedia(ctx, "cv", models.MediaRef{})
}
