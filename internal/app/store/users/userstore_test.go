package userstore

import (
	"errors"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/apperr"
	"github.com/dalemusser/folio/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func baseInput() CreateInput {
	return CreateInput{
		Username:     "Jordan",
		Email:        "jordan@example.com",
		PasswordHash: "$2a$12$fakehashfortests",
	}
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.PublicID == "" {
		t.Error("Create() left public id empty")
	}
	if u.Username != "Jordan" {
		t.Errorf("Create() username = %q, want stored as entered", u.Username)
	}
	if u.UsernameCI != "jordan" {
		t.Errorf("Create() username_ci = %q, want %q", u.UsernameCI, "jordan")
	}
	if u.Status != "active" {
		t.Errorf("Create() status = %q, want active", u.Status)
	}
}

func TestCreate_DuplicateUsernameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, baseInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := baseInput()
	dup.Username = "JORDAN"
	dup.Email = "other@example.com"
	if _, err := store.Create(ctx, dup); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("Create() with same username different case error = %v, want ErrDuplicateUsername", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, baseInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := baseInput()
	dup.Username = "someone-else"
	dup.Email = "JORDAN@example.com" // email matching is case-insensitive
	if _, err := store.Create(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() with duplicate email error = %v, want ErrDuplicateEmail", err)
	}
}

func TestCreate_DuplicatePhone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := baseInput()
	first.Phone = "+1 (555) 000-1111"
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := baseInput()
	dup.Username = "someone-else"
	dup.Email = "other@example.com"
	dup.Phone = "+15550001111" // same number, different formatting
	if _, err := store.Create(ctx, dup); !errors.Is(err, ErrDuplicatePhone) {
		t.Errorf("Create() with duplicate phone error = %v, want ErrDuplicatePhone", err)
	}
}

// When a concurrent signup slips past the pre-insert lookups, the unique
// index rejects the insert and the resulting Conflict must name the field
// that actually collided, not default to username.
func TestDupError_MatchesFiredIndex(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want error
	}{
		{
			name: "username index",
			msg:  `E11000 duplicate key error collection: folio.users index: uniq_users_username_ci dup key: { username_ci: "jordan" }`,
			want: ErrDuplicateUsername,
		},
		{
			name: "email index",
			msg:  `E11000 duplicate key error collection: folio.users index: uniq_users_email dup key: { email: "jordan@example.com" }`,
			want: ErrDuplicateEmail,
		},
		{
			name: "phone index",
			msg:  `E11000 duplicate key error collection: folio.users index: uniq_users_phone dup key: { phone: "+15550001111" }`,
			want: ErrDuplicatePhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mongo.WriteException{
				WriteErrors: mongo.WriteErrors{{Code: 11000, Message: tt.msg}},
			}
			if got := dupError(err); !errors.Is(got, tt.want) {
				t.Errorf("dupError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetByUsername_FoldsCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.GetByUsername(ctx, "jOrDaN")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.PublicID != created.PublicID {
		t.Errorf("GetByUsername() id = %q, want %q", got.PublicID, created.PublicID)
	}

	if _, err := store.GetByUsername(ctx, "nobody"); !apperr.IsNotFound(err) {
		t.Errorf("GetByUsername(nobody) error = %v, want not-found", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.UpdatePassword(ctx, u.PublicID, "$2a$12$newhash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	got, err := store.GetByPublicID(ctx, u.PublicID)
	if err != nil {
		t.Fatalf("GetByPublicID() error = %v", err)
	}
	if got.PasswordHash != "$2a$12$newhash" {
		t.Errorf("UpdatePassword() hash = %q, want new hash", got.PasswordHash)
	}

	if err := store.UpdatePassword(ctx, "missing", "x"); !apperr.IsNotFound(err) {
		t.Errorf("UpdatePassword(missing) error = %v, want not-found", err)
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err := store.Delete(ctx, u.PublicID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Delete() deleted %d, want 1", n)
	}
	n, err = store.Delete(ctx, u.PublicID)
	if err != nil {
		t.Fatalf("Delete() again error = %v", err)
	}
	if n != 0 {
		t.Errorf("Delete() again deleted %d, want 0", n)
	}
}
