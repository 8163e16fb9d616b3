package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware provides HTTP authentication middleware.
// It is thin and delegates authentication logic to AuthService.
type Middleware struct {
	authService AuthService
	enabled     bool
	logger      *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given AuthService.
// When enabled is false the gate passes every request through; use only
// for local development without an identity provider.
func NewMiddleware(authService AuthService, enabled bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		enabled:     enabled,
		logger:      logger,
	}
}

// RequireAuth validates the bearer token and injects claims into the
// request context for downstream handlers. Every failure produces the
// same 401 body.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next(w, r)
			return
		}

		claims, err := m.authService.ValidateRequest(r)
		if err != nil {
			m.unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// unauthorized returns a 401 response with the uniform JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "unauthorized",
	})
}
