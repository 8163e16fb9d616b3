package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestMiddleware_RequireAuth_ValidToken(t *testing.T) {
	claims := &Claims{Email: "student@example.edu"}
	claims.Subject = "user-1"

	service := NewAuthService(&mockJWKSClient{claims: claims}, zap.NewNop())
	middleware := NewMiddleware(service, true, zap.NewNop())

	var gotClaims *Claims
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile/user-1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID() != "user-1" {
		t.Errorf("expected claims for user-1 in context, got %+v", gotClaims)
	}
}

func TestMiddleware_RequireAuth_InvalidToken(t *testing.T) {
	service := NewAuthService(&mockJWKSClient{err: errors.New("expired")}, zap.NewNop())
	middleware := NewMiddleware(service, true, zap.NewNop())

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/profile/user-1", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] != "unauthorized" {
		t.Errorf("expected uniform error body, got %v", body)
	}
}

// Missing and malformed tokens must produce the exact same body as a bad
// signature, so probes cannot distinguish failure modes.
func TestMiddleware_RequireAuth_UniformDenial(t *testing.T) {
	service := NewAuthService(&mockJWKSClient{err: errors.New("signature invalid")}, zap.NewNop())
	middleware := NewMiddleware(service, true, zap.NewNop())

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	bodies := map[string]string{}
	for name, setup := range map[string]func(*http.Request){
		"missing":   func(r *http.Request) {},
		"malformed": func(r *http.Request) { r.Header.Set("Authorization", "token-without-scheme") },
		"invalid":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") },
	} {
		req := httptest.NewRequest(http.MethodGet, "/advising", nil)
		setup(req)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
		bodies[name] = rec.Body.String()
	}

	if bodies["missing"] != bodies["malformed"] || bodies["malformed"] != bodies["invalid"] {
		t.Errorf("expected identical denial bodies, got %v", bodies)
	}
}

func TestMiddleware_RequireAuth_Disabled(t *testing.T) {
	service := NewAuthService(&mockJWKSClient{err: errors.New("should not be consulted")}, zap.NewNop())
	middleware := NewMiddleware(service, false, zap.NewNop())

	called := false
	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile/user-1", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if !called {
		t.Fatal("expected handler to be called when auth is disabled")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
