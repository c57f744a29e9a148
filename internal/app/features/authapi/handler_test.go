package authapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/store/ratelimit"
	"github.com/dalemusser/folio/internal/app/store/sessions"
	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSessionKey = "0123456789abcdef0123456789abcdef-extra-entropy"

func newTestHandler(t *testing.T, db *mongo.Database) (*Handler, *Resolver) {
	t.Helper()
	sm, err := auth.NewSessionManager(testSessionKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	users := userstore.New(db)
	sessionStore := sessions.New(db, time.Hour)
	limiter := ratelimit.New(db, 3, 15*time.Minute, 30*time.Minute)
	h := NewHandler(users, sessionStore, limiter, sm, zap.NewNop())
	return h, &Resolver{Users: users, Sessions: sessionStore}
}

func signup(t *testing.T, h *Handler, username, email, password string) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	h.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Signup() status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return testutil.DecodeJSON(t, rec)
}

func TestSignup_FirstUserBecomesAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	body := signup(t, h, "jordan", "jordan@example.com", "correct-horse")
	user := body["user"].(map[string]any)
	if user["admin"] != true {
		t.Errorf("first signup admin = %v, want true", user["admin"])
	}

	// Second anonymous signup is rejected.
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/signup", map[string]string{
		"username": "intruder",
		"email":    "intruder@example.com",
		"password": "correct-horse",
	})
	h.Signup(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Signup() anonymous second user status = %d, want 403", rec.Code)
	}
}

func TestSignup_AdminCanCreateMoreUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	body := signup(t, h, "jordan", "jordan@example.com", "correct-horse")
	adminID := body["user"].(map[string]any)["id"].(string)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedJSONRequest(t, http.MethodPost, "/signup", map[string]string{
		"username": "editor",
		"email":    "editor@example.com",
		"password": "correct-horse",
	}, testutil.TestUser{ID: adminID, Username: "jordan", Admin: true})
	h.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Signup() by admin status = %d, body = %s", rec.Code, rec.Body.String())
	}
	user := testutil.DecodeJSON(t, rec)["user"].(map[string]any)
	if user["admin"] != false {
		t.Errorf("second user admin = %v, want false", user["admin"])
	}
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/signup", map[string]string{
		"username": "jordan",
		"email":    "jordan@example.com",
		"password": "123456",
	})
	h.Signup(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Signup() with common password status = %d, want 400", rec.Code)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	body := signup(t, h, "jordan", "jordan@example.com", "correct-horse")
	adminID := body["user"].(map[string]any)["id"].(string)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedJSONRequest(t, http.MethodPost, "/signup", map[string]string{
		"username": "JORDAN",
		"email":    "second@example.com",
		"password": "correct-horse",
	}, testutil.TestUser{ID: adminID, Admin: true})
	h.Signup(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("Signup() duplicate username status = %d, want 409", rec.Code)
	}
}

func TestLogin_Flow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, resolver := newTestHandler(t, db)

	signup(t, h, "jordan", "jordan@example.com", "correct-horse")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "Jordan", // case-insensitive match
		"password": "correct-horse",
	})
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Login() status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := testutil.DecodeJSON(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Login() returned no token")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("Login() set no session cookie")
	}

	// The token resolves to the user.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := resolver.ResolveToken(ctx, token)
	if u == nil {
		t.Fatal("ResolveToken() returned nil for fresh token")
	}
	if u.Username != "jordan" || !u.Admin {
		t.Errorf("ResolveToken() = %+v, want jordan/admin", u)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	signup(t, h, "jordan", "jordan@example.com", "correct-horse")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "jordan",
		"password": "wrong",
	})
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Login() wrong password status = %d, want 401", rec.Code)
	}
}

func TestLogin_ThrottledAfterRepeatedFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	signup(t, h, "jordan", "jordan@example.com", "correct-horse")

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
			"username": "jordan",
			"password": "wrong",
		})
		h.Login(rec, req)
	}

	// Even the correct password is rejected while locked out.
	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "jordan",
		"password": "correct-horse",
	})
	h.Login(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Login() while locked out status = %d, want 429", rec.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, resolver := newTestHandler(t, db)

	body := signup(t, h, "jordan", "jordan@example.com", "correct-horse")
	userID := body["user"].(map[string]any)["id"].(string)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "jordan",
		"password": "correct-horse",
	})
	h.Login(rec, req)
	token := testutil.DecodeJSON(t, rec)["token"].(string)

	rec = httptest.NewRecorder()
	logoutReq := testutil.NewRequest(http.MethodPost, "/logout")
	logoutReq = auth.WithTestUser(logoutReq, &auth.SessionUser{ID: userID, Token: token})
	h.Logout(rec, logoutReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("Logout() status = %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if u := resolver.ResolveToken(ctx, token); u != nil {
		t.Error("ResolveToken() still resolves after logout")
	}
}

func TestLogoutAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, resolver := newTestHandler(t, db)

	body := signup(t, h, "jordan", "jordan@example.com", "correct-horse")
	userID := body["user"].(map[string]any)["id"].(string)

	var tokens []string
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
			"username": "jordan",
			"password": "correct-horse",
		})
		h.Login(rec, req)
		tokens = append(tokens, testutil.DecodeJSON(t, rec)["token"].(string))
	}

	rec := httptest.NewRecorder()
	req := testutil.NewRequest(http.MethodPost, "/logout-all")
	req = auth.WithTestUser(req, &auth.SessionUser{ID: userID, Token: tokens[0]})
	h.LogoutAll(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("LogoutAll() status = %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	for _, token := range tokens {
		if u := resolver.ResolveToken(ctx, token); u != nil {
			t.Errorf("ResolveToken(%q) still resolves after logout-all", token)
		}
	}
}

func TestMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h, _ := newTestHandler(t, db)

	body := signup(t, h, "jordan", "jordan@example.com", "correct-horse")
	userID := body["user"].(map[string]any)["id"].(string)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/me", testutil.TestUser{ID: userID, Username: "jordan", Admin: true})
	h.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Me() status = %d", rec.Code)
	}
	user := testutil.DecodeJSON(t, rec)["user"].(map[string]any)
	if user["username"] != "jordan" {
		t.Errorf("Me() username = %v, want jordan", user["username"])
	}

	rec = httptest.NewRecorder()
	h.Me(rec, testutil.NewRequest(http.MethodGet, "/me"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Me() anonymous status = %d, want 401", rec.Code)
	}
}
