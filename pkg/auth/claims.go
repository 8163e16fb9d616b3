// Package auth provides JWT-based authentication for advising-engine.
// It validates bearer tokens issued by the identity provider using its
// JWKS discovery endpoint.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
)

// Claims represents the verified identity attributes extracted from a
// bearer token. It embeds RegisteredClaims for standard JWT fields
// (sub, iss, exp, ...) and adds the identity provider's custom claims.
type Claims struct {
	jwt.RegisteredClaims
	Email  string   `json:"email,omitempty"`
	Groups []string `json:"cognito:groups,omitempty"`
}

// UserID returns the stable subject identifier used as the key for all
// downstream store lookups.
func (c *Claims) UserID() string {
	return c.Subject
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}
