package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAuth(t *testing.T) *JWTAuthMiddleware {
	t.Helper()
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return NewJWTAuthMiddleware(&JWTAuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test-jwt-secret",
		JWTExpiryHours:    1,
		SkipPaths: []string{
			"/health",
			"GET /api/display/*",
			"/api/acknowledge*",
		},
	})
}

func TestJWTAuth_TokenRoundTrip(t *testing.T) {
	auth := newTestAuth(t)

	token, err := auth.GenerateToken("admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %q", claims.Username)
	}
	if claims.Issuer != "beacon" {
		t.Errorf("expected issuer beacon, got %q", claims.Issuer)
	}
}

func TestJWTAuth_RejectsTamperedToken(t *testing.T) {
	auth := newTestAuth(t)

	token, _ := auth.GenerateToken("admin")
	if _, err := auth.ValidateToken(token + "x"); err == nil {
		t.Error("expected error for tampered token")
	}
}

func TestJWTAuth_ValidateCredentials(t *testing.T) {
	auth := newTestAuth(t)

	if !auth.ValidateCredentials("admin", "s3cret") {
		t.Error("valid credentials rejected")
	}
	if auth.ValidateCredentials("admin", "wrong") {
		t.Error("wrong password accepted")
	}
	if auth.ValidateCredentials("root", "s3cret") {
		t.Error("wrong username accepted")
	}
}

func TestJWTAuth_WrapBlocksWithoutToken(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/alerts/trigger", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_WrapPassesWithToken(t *testing.T) {
	auth := newTestAuth(t)
	var gotUser string
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, _ := auth.GenerateToken("admin")
	req := httptest.NewRequest("POST", "/api/alerts/trigger", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "admin" {
		t.Errorf("expected user in context, got %q", gotUser)
	}
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	open := []string{
		"/health",
		"/api/display/display-3/text",
		"/api/acknowledge",
		"/api/acknowledge/summary",
	}
	for _, path := range open {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected %s to skip auth, got %d", path, rec.Code)
		}
	}

	// Non-skip path still requires a token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/displays", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected /api/displays to require auth, got %d", rec.Code)
	}
}

func TestJWTAuth_MethodScopedSkip(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// The display carve-out opens only the GET polls.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/display/display-3/text", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected device poll to skip auth, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/display/display-3/message", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected tokenless message post to be rejected, got %d", rec.Code)
	}

	token, _ := auth.GenerateToken("admin")
	req := httptest.NewRequest("POST", "/api/display/display-3/message", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected authenticated message post to pass, got %d", rec.Code)
	}
}
