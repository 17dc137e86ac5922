// Package credential derives and verifies salted password hashes.
//
// Salt and hash are stored as two separate base64 columns, so the codec works
// on (plaintext, salt) pairs instead of a self-describing PHC string.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Params defines the Argon2id cost factors.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32 // bytes of random salt
	KeyLength   uint32 // bytes of derived hash
}

// DefaultParams suit a small container (0.5 - 1 CPU core).
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

var ErrMalformedSalt = errors.New("malformed salt")

// Codec is safe for concurrent use.
type Codec struct {
	params Params
	random io.Reader
}

// NewCodec fills zero fields of p from DefaultParams.
func NewCodec(p Params) *Codec {
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultParams.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams.KeyLength
	}
	return &Codec{params: p, random: rand.Reader}
}

// Derive generates a fresh salt and hashes plaintext with it.
func (c *Codec) Derive(plaintext string) (salt, hash string, err error) {
	raw := make([]byte, c.params.SaltLength)
	if _, err := io.ReadFull(c.random, raw); err != nil {
		return "", "", fmt.Errorf("read salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), c.key(plaintext, raw), nil
}

// Hash recomputes the hash for a stored salt. Same inputs, same output.
func (c *Codec) Hash(plaintext, salt string) (string, error) {
	raw, err := decodeSalt(salt)
	if err != nil {
		return "", err
	}
	return c.key(plaintext, raw), nil
}

// Verify reports whether plaintext matches the stored salt and hash.
// Malformed salt or hash values never match.
func (c *Codec) Verify(plaintext, salt, hash string) bool {
	raw, err := decodeSalt(salt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(hash)
	if err != nil || len(want) == 0 {
		return false
	}
	got := argon2.IDKey([]byte(plaintext), raw, c.params.Iterations, c.params.Memory, c.params.Parallelism, c.params.KeyLength)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (c *Codec) key(plaintext string, salt []byte) string {
	k := argon2.IDKey([]byte(plaintext), salt, c.params.Iterations, c.params.Memory, c.params.Parallelism, c.params.KeyLength)
	return base64.StdEncoding.EncodeToString(k)
}

func decodeSalt(salt string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(raw) == 0 {
		return nil, ErrMalformedSalt
	}
	return raw, nil
}
