// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the single owner record shown on the public site.
// There is exactly one profile document per deployment; it is keyed by the
// fixed filter {"singleton": true} so the invariant holds structurally
// rather than by query convention.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PublicID  string             `bson:"id" json:"id"`
	Singleton bool               `bson:"singleton" json:"-"`

	Personal PersonalInfo `bson:"personal" json:"personal"`

	ProfileImage MediaRef `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	CoverImage   MediaRef `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	CV           MediaRef `bson:"cv,omitempty" json:"cv,omitempty"`

	SocialLinks    SocialLinks     `bson:"social_links" json:"social_links"`
	Experience     Experience      `bson:"experience" json:"experience"`
	Skills         []SkillGroup    `bson:"skills" json:"skills"`
	Technologies   []string        `bson:"technologies" json:"technologies"`
	Education      []Education     `bson:"education" json:"education"`
	Certifications []Certification `bson:"certifications" json:"certifications"`
	Stats          ProfileStats    `bson:"stats" json:"stats"`

	Published bool `bson:"published" json:"published"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PersonalInfo holds the owner's display details.
type PersonalInfo struct {
	FullName string `bson:"full_name" json:"full_name"`
	Headline string `bson:"headline,omitempty" json:"headline,omitempty"`
	Bio      string `bson:"bio,omitempty" json:"bio,omitempty"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`
}

// SocialLinks holds the owner's social profile URLs.
type SocialLinks struct {
	GitHub   string `bson:"github,omitempty" json:"github,omitempty"`
	LinkedIn string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Twitter  string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Website  string `bson:"website,omitempty" json:"website,omitempty"`
	YouTube  string `bson:"youtube,omitempty" json:"youtube,omitempty"`
}

// Company is one employment entry embedded in Experience.
type Company struct {
	Name        string `bson:"name" json:"name"`
	Role        string `bson:"role" json:"role"`
	StartDate   string `bson:"start_date,omitempty" json:"start_date,omitempty"` // e.g. "2021-03"
	EndDate     string `bson:"end_date,omitempty" json:"end_date,omitempty"`     // empty means current
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// Experience summarizes the owner's work history.
type Experience struct {
	TotalYears int       `bson:"total_years" json:"total_years"`
	Summary    string    `bson:"summary,omitempty" json:"summary,omitempty"`
	Companies  []Company `bson:"companies" json:"companies"`
}

// SkillGroup is one category of skills with a proficiency level.
type SkillGroup struct {
	Category string   `bson:"category" json:"category"`
	Items    []string `bson:"items" json:"items"`
	Level    string   `bson:"level,omitempty" json:"level,omitempty"` // e.g. "expert"
}

// Education is one schooling entry.
type Education struct {
	Institution string `bson:"institution" json:"institution"`
	Degree      string `bson:"degree,omitempty" json:"degree,omitempty"`
	Field       string `bson:"field,omitempty" json:"field,omitempty"`
	StartYear   int    `bson:"start_year,omitempty" json:"start_year,omitempty"`
	EndYear     int    `bson:"end_year,omitempty" json:"end_year,omitempty"`
}

// Certification is one professional certification entry.
type Certification struct {
	Name   string `bson:"name" json:"name"`
	Issuer string `bson:"issuer,omitempty" json:"issuer,omitempty"`
	Year   int    `bson:"year,omitempty" json:"year,omitempty"`
	URL    string `bson:"url,omitempty" json:"url,omitempty"`
}

// ProfileStats holds headline numbers rendered on the public site.
type ProfileStats struct {
	ProjectsCompleted int `bson:"projects_completed" json:"projects_completed"`
	YearsExperience   int `bson:"years_experience" json:"years_experience"`
	HappyClients      int `bson:"happy_clients" json:"happy_clients"`
	Certifications    int `bson:"certifications" json:"certifications"`
}
