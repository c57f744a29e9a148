// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses
const (
	ProjectCompleted  = "completed"
	ProjectInProgress = "in-progress"
	ProjectPlanned    = "planned"
)

// Project complexity tiers
const (
	ComplexityBeginner     = "beginner"
	ComplexityIntermediate = "intermediate"
	ComplexityAdvanced     = "advanced"
)

// AllProjectStatuses returns the valid project statuses.
func AllProjectStatuses() []string {
	return []string{ProjectCompleted, ProjectInProgress, ProjectPlanned}
}

// IsValidProjectStatus checks if a project status is valid.
func IsValidProjectStatus(status string) bool {
	for _, s := range AllProjectStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidComplexity checks if a complexity tier is valid.
func IsValidComplexity(c string) bool {
	return c == ComplexityBeginner || c == ComplexityIntermediate || c == ComplexityAdvanced
}

// ProjectLinks holds optional external links for a project.
type ProjectLinks struct {
	Live string `bson:"live,omitempty" json:"live,omitempty"`
	Repo string `bson:"repo,omitempty" json:"repo,omitempty"`
}

// Screenshot is one entry in a project's screenshot gallery.
// Two screenshots may carry the same URL; removal by URL takes out
// exactly the first matching entry.
type Screenshot struct {
	URL  string `bson:"url" json:"url"`
	Path string `bson:"path" json:"-"` // storage key for deletion
}

// Project is a portfolio item shown on the public site.
type Project struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID string             `bson:"id" json:"id"`

	Title            string `bson:"title" json:"title"`
	Description      string `bson:"description" json:"description"`
	ShortDescription string `bson:"short_description,omitempty" json:"short_description,omitempty"`

	Technologies []string     `bson:"technologies,omitempty" json:"technologies,omitempty"`
	Links        ProjectLinks `bson:"links,omitempty" json:"links,omitempty"`

	CoverImage  MediaRef     `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	Screenshots []Screenshot `bson:"screenshots,omitempty" json:"screenshots,omitempty"`

	Status     string `bson:"status" json:"status"`         // completed, in-progress, planned
	Complexity string `bson:"complexity" json:"complexity"` // beginner, intermediate, advanced
	Featured   bool   `bson:"featured" json:"featured"`

	ProjectDate time.Time `bson:"project_date,omitempty" json:"project_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
