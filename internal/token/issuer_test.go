package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(Config{Secret: "test-secret", Issuer: "users-test"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer(Config{}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestIssueAccessRoundTrip(t *testing.T) {
	iss := newTestIssuer(t)
	now := time.Now()
	iss.now = func() time.Time { return now }

	raw, err := iss.IssueAccess(map[string]any{"sub": "42", "email": "a@x.com", "exp": 1}, 15*24*time.Hour)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	claims, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims["sub"] != "42" || claims["email"] != "a@x.com" || claims["iss"] != "users-test" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("missing exp: %v", err)
	}
	if want := now.Add(15 * 24 * time.Hour).Unix(); exp.Unix() != want {
		t.Fatalf("exp = %d, want %d", exp.Unix(), want)
	}
}

func TestIssueAccessRejectsNonPositiveTTL(t *testing.T) {
	iss := newTestIssuer(t)
	if _, err := iss.IssueAccess(nil, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestVerifyExpired(t *testing.T) {
	iss := newTestIssuer(t)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := iss.IssueAccess(map[string]any{"sub": "1"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	iss.now = time.Now
	if _, err := iss.Verify(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestIssueOpaqueHasNoExpiry(t *testing.T) {
	iss := newTestIssuer(t)
	a, err := iss.IssueOpaque()
	if err != nil {
		t.Fatalf("IssueOpaque: %v", err)
	}
	b, err := iss.IssueOpaque()
	if err != nil {
		t.Fatalf("IssueOpaque: %v", err)
	}
	if a == b {
		t.Fatal("opaque tokens must differ")
	}
	claims, err := iss.Verify(a)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, ok := claims["exp"]; ok {
		t.Fatalf("opaque token must not expire: %v", claims)
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Fatalf("missing jti: %v", claims)
	}
}

func TestVerifyInvalid(t *testing.T) {
	iss := newTestIssuer(t)
	good, err := iss.IssueOpaque()
	if err != nil {
		t.Fatalf("IssueOpaque: %v", err)
	}
	other, err := NewIssuer(Config{Secret: "other-secret"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	foreign, err := other.IssueOpaque()
	if err != nil {
		t.Fatalf("IssueOpaque: %v", err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	parts := strings.Split(good, ".")
	forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"jti":"forged"}`)) + "." + parts[2]

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"tampered":     forged,
		"wrong secret": foreign,
		"alg none":     unsigned,
		"truncated":    parts[0],
	}
	for name, raw := range cases {
		if _, err := iss.Verify(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}
