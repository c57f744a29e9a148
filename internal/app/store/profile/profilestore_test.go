package profilestore

import (
	"testing"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
)

func TestGetOrCreate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if first.PublicID == "" {
		t.Error("GetOrCreate() left public id empty")
	}
	if first.Published {
		t.Error("GetOrCreate() new profile should start unpublished")
	}

	second, err := store.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("GetOrCreate() second call error = %v", err)
	}
	if second.ID != first.ID || second.PublicID != first.PublicID {
		t.Errorf("GetOrCreate() returned a different document: %v vs %v", second.ID, first.ID)
	}

	n, err := db.Collection("profiles").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if n != 1 {
		t.Errorf("profiles collection has %d documents, want 1", n)
	}
}

func TestGet_BeforeCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx); !apperr.IsNotFound(err) {
		t.Errorf("Get() error = %v, want not-found", err)
	}
}

func TestUpdateSections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetOrCreate(ctx); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	p, err := store.UpdatePersonal(ctx, models.PersonalInfo{
		FullName: "Jordan Dev",
		Email:    "Jordan@Example.COM",
		Location: "Remote",
	})
	if err != nil {
		t.Fatalf("UpdatePersonal() error = %v", err)
	}
	if p.Personal.FullName != "Jordan Dev" {
		t.Errorf("UpdatePersonal() name = %q", p.Personal.FullName)
	}
	if p.Personal.Email != "jordan@example.com" {
		t.Errorf("UpdatePersonal() email = %q, want lowercased", p.Personal.Email)
	}

	p, err = store.UpdateSocialLinks(ctx, models.SocialLinks{GitHub: "https://github.com/jordandev"})
	if err != nil {
		t.Fatalf("UpdateSocialLinks() error = %v", err)
	}
	if p.SocialLinks.GitHub == "" {
		t.Error("UpdateSocialLinks() did not persist github link")
	}
	// Earlier section untouched by a later narrow update.
	if p.Personal.FullName != "Jordan Dev" {
		t.Error("UpdateSocialLinks() clobbered the personal section")
	}

	p, err = store.UpdateTechnologies(ctx, []string{"Go", "go", "  MongoDB  "})
	if err != nil {
		t.Fatalf("UpdateTechnologies() error = %v", err)
	}
	if want := []string{"go", "mongodb"}; len(p.Technologies) != 2 || p.Technologies[0] != want[0] || p.Technologies[1] != want[1] {
		t.Errorf("UpdateTechnologies() = %v, want %v", p.Technologies, want)
	}

	p, err = store.UpdateStats(ctx, models.ProfileStats{ProjectsCompleted: 12, YearsExperience: 5})
	if err != nil {
		t.Fatalf("UpdateStats() error = %v", err)
	}
	if p.Stats.ProjectsCompleted != 12 {
		t.Errorf("UpdateStats() projects = %d, want 12", p.Stats.ProjectsCompleted)
	}
}

func TestUpdateSection_BeforeCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.UpdatePersonal(ctx, models.PersonalInfo{FullName: "x"}); !apperr.IsNotFound(err) {
		t.Errorf("UpdatePersonal() without profile error = %v, want not-found", err)
	}
}

func TestSetPublished(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetOrCreate(ctx); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	p, err := store.SetPublished(ctx, true)
	if err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}
	if !p.Published {
		t.Error("SetPublished(true) did not publish")
	}

	p, err = store.SetPublished(ctx, false)
	if err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}
	if p.Published {
		t.Error("SetPublished(false) did not unpublish")
	}
}

func TestMediaReplacementReturnsOldRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetOrCreate(ctx); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	old, err := store.SetProfileImage(ctx, models.MediaRef{URL: "https://cdn.example.com/v1.png", Path: "profile/v1.png"})
	if err != nil {
		t.Fatalf("SetProfileImage() error = %v", err)
	}
	if !old.IsZero() {
		t.Errorf("SetProfileImage() first call old ref = %+v, want zero", old)
	}

	old, err = store.SetProfileImage(ctx, models.MediaRef{URL: "https://cdn.example.com/v2.png", Path: "profile/v2.png"})
	if err != nil {
		t.Fatalf("SetProfileImage() error = %v", err)
	}
	if old.Path != "profile/v1.png" {
		t.Errorf("SetProfileImage() old ref path = %q, want %q", old.Path, "profile/v1.png")
	}

	old, err = store.ClearProfileImage(ctx)
	if err != nil {
		t.Fatalf("ClearProfileImage() error = %v", err)
	}
	if old.Path != "profile/v2.png" {
		t.Errorf("ClearProfileImage() old ref path = %q, want %q", old.Path, "profile/v2.png")
	}

	p, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !p.ProfileImage.IsZero() {
		t.Errorf("profile image after clear = %+v, want zero", p.ProfileImage)
	}
}
