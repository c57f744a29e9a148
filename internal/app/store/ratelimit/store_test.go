package ratelimit

import (
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/testutil"
)

func TestCheckAllowed_NoRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 5, 15*time.Minute, 30*time.Minute)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	allowed, remaining, lockedUntil := store.CheckAllowed(ctx, "jordan")
	if !allowed {
		t.Error("CheckAllowed() with no record = false, want true")
	}
	if remaining != 5 {
		t.Errorf("CheckAllowed() remaining = %d, want 5", remaining)
	}
	if lockedUntil != nil {
		t.Errorf("CheckAllowed() lockedUntil = %v, want nil", lockedUntil)
	}
}

func TestRecordFailure_TriggersLockout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 3, 15*time.Minute, 30*time.Minute)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		locked, _ := store.RecordFailure(ctx, "jordan")
		if locked {
			t.Fatalf("RecordFailure() #%d locked out early", i+1)
		}
	}

	locked, until := store.RecordFailure(ctx, "jordan")
	if !locked {
		t.Fatal("RecordFailure() third failure did not lock out")
	}
	if until == nil || !until.After(time.Now()) {
		t.Errorf("RecordFailure() lockedUntil = %v, want future time", until)
	}

	allowed, remaining, _ := store.CheckAllowed(ctx, "jordan")
	if allowed {
		t.Error("CheckAllowed() after lockout = true, want false")
	}
	if remaining != -1 {
		t.Errorf("CheckAllowed() remaining = %d, want -1", remaining)
	}
}

func TestCheckAllowed_FoldsUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 2, 15*time.Minute, 30*time.Minute)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "Jordan")
	store.RecordFailure(ctx, "JORDAN")

	if allowed, _, _ := store.CheckAllowed(ctx, "jordan"); allowed {
		t.Error("CheckAllowed() = true, want case variants to share one counter")
	}
}

func TestClearOnSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 2, 15*time.Minute, 30*time.Minute)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "jordan")
	if err := store.ClearOnSuccess(ctx, "jordan"); err != nil {
		t.Fatalf("ClearOnSuccess() error = %v", err)
	}

	_, remaining, _ := store.CheckAllowed(ctx, "jordan")
	if remaining != 2 {
		t.Errorf("CheckAllowed() after clear remaining = %d, want 2", remaining)
	}
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 2, 50*time.Millisecond, 30*time.Minute)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "jordan")
	time.Sleep(60 * time.Millisecond)

	allowed, remaining, _ := store.CheckAllowed(ctx, "jordan")
	if !allowed {
		t.Error("CheckAllowed() after window expiry = false, want true")
	}
	if remaining != 2 {
		t.Errorf("CheckAllowed() after window expiry remaining = %d, want 2", remaining)
	}
}

func TestDeleteStale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db, 5, 15*time.Minute, 30*time.Minute)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.RecordFailure(ctx, "jordan")

	n, err := store.DeleteStale(ctx, 0)
	if err != nil {
		t.Fatalf("DeleteStale() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteStale() deleted %d, want 1", n)
	}
}
