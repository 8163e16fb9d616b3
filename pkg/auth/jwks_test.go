package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWKSClient_DisabledVerification_ParsesClaims(t *testing.T) {
	client, err := NewJWKSClient(&JWKSConfig{EnableVerification: false})
	if err != nil {
		t.Fatalf("NewJWKSClient failed: %v", err)
	}
	defer client.Close()

	claims := &Claims{Email: "student@example.edu"}
	claims.Subject = "user-42"
	claims.Issuer = "https://issuer.example.com"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	got, err := client.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if got.UserID() != "user-42" {
		t.Errorf("expected subject 'user-42', got %q", got.UserID())
	}
	if got.Email != "student@example.edu" {
		t.Errorf("expected email claim, got %q", got.Email)
	}
}

func TestJWKSClient_DisabledVerification_RejectsGarbage(t *testing.T) {
	client, err := NewJWKSClient(&JWKSConfig{EnableVerification: false})
	if err != nil {
		t.Fatalf("NewJWKSClient failed: %v", err)
	}
	defer client.Close()

	if _, err := client.ValidateToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
