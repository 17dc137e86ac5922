// Package token mints and verifies the HS256 tokens handed out at signup:
// time-bound access tokens carrying user claims, and opaque tokens (refresh,
// email verification) that wrap a random identifier and never expire.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalid       = errors.New("token invalid")
	ErrExpired       = errors.New("token expired")
	ErrMissingSecret = errors.New("token signing secret is required")
)

type Config struct {
	Secret string
	Issuer string
}

// Issuer signs with a single process-wide secret loaded at startup.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &Issuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, now: time.Now}, nil
}

// IssueAccess signs claims with iat/exp (and iss when configured) added.
// Caller claims never override the registered ones.
func (i *Issuer) IssueAccess(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("invalid access token ttl %v", ttl)
	}
	now := i.now()
	mc := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(ttl).Unix()
	if i.issuer != "" {
		mc["iss"] = i.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(i.secret)
}

// IssueOpaque signs a fresh time-based UUID as jti, without expiration.
func (i *Issuer) IssueOpaque() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"jti": id.String()}).SignedString(i.secret)
}

// Verify checks signature and, when present, expiration. Failures are
// reported as ErrExpired or ErrInvalid.
func (i *Issuer) Verify(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}
