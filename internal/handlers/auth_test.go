package handlers

import (
	"net/http"
	"testing"

	"github.com/glenwood/beacon/internal/alerting"
	"github.com/glenwood/beacon/internal/middleware"
	"github.com/glenwood/beacon/internal/testhelpers"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := middleware.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	jwtAuth := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test-secret",
		JWTExpiryHours:    24,
	})
	return NewAuthHandler(jwtAuth, 24)
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	h := newAuthHandler(t)

	var resp LoginResponse
	testhelpers.NewHTTPTestContext(t, "POST", "/auth/login", nil).
		WithJSONBody(LoginRequest{Username: "admin", Password: "s3cret"}).
		ExecuteFunc(h.handleLogin).
		AssertStatus(http.StatusOK).
		DecodeJSON(&resp)

	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.ExpiresIn != 24*60*60 {
		t.Errorf("expected expiry 86400, got %d", resp.ExpiresIn)
	}
}

func TestAuthHandler_LoginBadPassword(t *testing.T) {
	h := newAuthHandler(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/auth/login", nil).
		WithJSONBody(LoginRequest{Username: "admin", Password: "wrong"}).
		ExecuteFunc(h.handleLogin).
		AssertStatus(http.StatusUnauthorized)
}

func TestAuthHandler_LoginMissingFields(t *testing.T) {
	h := newAuthHandler(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/auth/login", nil).
		WithJSONBody(LoginRequest{Username: "admin"}).
		ExecuteFunc(h.handleLogin).
		AssertStatus(http.StatusBadRequest)
}

func TestHTTPHandler_Health(t *testing.T) {
	h := NewHTTPHandler(alerting.NewState())

	var resp map[string]string
	testhelpers.NewHTTPTestContext(t, "GET", "/health", nil).
		ExecuteFunc(h.handleHealth).
		AssertStatus(http.StatusOK).
		DecodeJSON(&resp)

	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
	if resp["mode"] != "IDLE" {
		t.Errorf("expected idle mode in health, got %q", resp["mode"])
	}
}
