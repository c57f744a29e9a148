package projectstore

import (
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
)

func baseInput() CreateInput {
	return CreateInput{
		Title:       "Portfolio Site",
		Description: "A personal portfolio",
	}
}

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Status != models.ProjectCompleted {
		t.Errorf("Create() default status = %q, want %q", p.Status, models.ProjectCompleted)
	}
	if p.Complexity != models.ComplexityIntermediate {
		t.Errorf("Create() default complexity = %q, want %q", p.Complexity, models.ComplexityIntermediate)
	}
	if p.PublicID == "" {
		t.Error("Create() left public id empty")
	}
}

func TestCreate_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	input := baseInput()
	input.Status = "abandoned"
	if _, err := store.Create(ctx, input); apperr.KindOf(err) != apperr.Invalid {
		t.Errorf("Create() error = %v, want invalid", err)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	status := models.ProjectInProgress
	updated, err := store.Update(ctx, p.PublicID, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Status != models.ProjectInProgress {
		t.Errorf("Update() status = %q, want %q", updated.Status, models.ProjectInProgress)
	}
	if updated.Title != p.Title {
		t.Error("Update() changed fields not named in the input")
	}

	if _, err := store.Update(ctx, "missing", UpdateInput{Status: &status}); !apperr.IsNotFound(err) {
		t.Errorf("Update(missing) error = %v, want not-found", err)
	}
}

func TestListFeatured_CapsAtThree(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		input := baseInput()
		input.Featured = true
		input.ProjectDate = time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		if _, err := store.Create(ctx, input); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := store.ListFeatured(ctx)
	if err != nil {
		t.Fatalf("ListFeatured() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListFeatured() returned %d projects, want 3", len(got))
	}
	// Newest project date first.
	if got[0].ProjectDate.Before(got[1].ProjectDate) {
		t.Errorf("ListFeatured() not sorted newest first: %v then %v", got[0].ProjectDate, got[1].ProjectDate)
	}
}

func TestScreenshots_AddAndRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	shots := []models.Screenshot{
		{URL: "https://cdn.example.com/a.png", Path: "projects/a.png"},
		{URL: "https://cdn.example.com/b.png", Path: "projects/b.png"},
	}
	for _, shot := range shots {
		if err := store.AddScreenshot(ctx, p.PublicID, shot); err != nil {
			t.Fatalf("AddScreenshot() error = %v", err)
		}
	}

	removed, err := store.RemoveScreenshot(ctx, p.PublicID, shots[0].URL)
	if err != nil {
		t.Fatalf("RemoveScreenshot() error = %v", err)
	}
	if removed.Path != shots[0].Path {
		t.Errorf("RemoveScreenshot() returned path %q, want %q", removed.Path, shots[0].Path)
	}

	got, err := store.GetByPublicID(ctx, p.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID() error = %v", err)
	}
	if len(got.Screenshots) != 1 || got.Screenshots[0].URL != shots[1].URL {
		t.Errorf("screenshots after remove = %v, want only %q", got.Screenshots, shots[1].URL)
	}
}

func TestRemoveScreenshot_DuplicateURLRemovesOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	const url = "https://cdn.example.com/dup.png"
	for _, path := range []string{"projects/dup-1.png", "projects/dup-2.png"} {
		if err := store.AddScreenshot(ctx, p.PublicID, models.Screenshot{URL: url, Path: path}); err != nil {
			t.Fatalf("AddScreenshot() error = %v", err)
		}
	}

	removed, err := store.RemoveScreenshot(ctx, p.PublicID, url)
	if err != nil {
		t.Fatalf("RemoveScreenshot() error = %v", err)
	}
	if removed.Path != "projects/dup-1.png" {
		t.Errorf("RemoveScreenshot() removed %q, want first entry", removed.Path)
	}

	got, err := store.GetByPublicID(ctx, p.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID() error = %v", err)
	}
	if len(got.Screenshots) != 1 {
		t.Fatalf("screenshots after remove = %d entries, want exactly 1", len(got.Screenshots))
	}
	if got.Screenshots[0].Path != "projects/dup-2.png" {
		t.Errorf("surviving screenshot = %q, want %q", got.Screenshots[0].Path, "projects/dup-2.png")
	}
}

func TestRemoveScreenshot_UnknownURL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.RemoveScreenshot(ctx, p.PublicID, "https://cdn.example.com/none.png"); !apperr.IsNotFound(err) {
		t.Errorf("RemoveScreenshot() error = %v, want not-found", err)
	}
}

func TestGetStats_SumInvariant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Empty collection yields all zeros.
	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("GetStats() on empty collection total = %d, want 0", stats.Total)
	}

	mk := func(status string, featured bool) {
		t.Helper()
		input := baseInput()
		input.Status = status
		input.Featured = featured
		if _, err := store.Create(ctx, input); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	mk(models.ProjectCompleted, true)
	mk(models.ProjectCompleted, false)
	mk(models.ProjectInProgress, true)
	mk(models.ProjectPlanned, false)

	stats, err = store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.Total != 4 || stats.Completed != 2 || stats.InProgress != 1 || stats.Planned != 1 {
		t.Errorf("GetStats() = %+v, want 4/2/1/1", stats)
	}
	if stats.Completed+stats.InProgress+stats.Planned != stats.Total {
		t.Errorf("GetStats() status counts sum to %d, want total %d",
			stats.Completed+stats.InProgress+stats.Planned, stats.Total)
	}
	if stats.Beginner+stats.Intermediate+stats.Advanced != stats.Total {
		t.Errorf("GetStats() complexity counts sum to %d, want total %d",
			stats.Beginner+stats.Intermediate+stats.Advanced, stats.Total)
	}
	if stats.Intermediate != 4 {
		t.Errorf("GetStats() intermediate = %d, want 4 (default tier)", stats.Intermediate)
	}
	if stats.Featured != 2 {
		t.Errorf("GetStats() featured = %d, want 2", stats.Featured)
	}
}
