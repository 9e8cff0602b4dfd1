// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters.
const (
	pbkdf2SaltLen    = 32 // salt length in bytes
	pbkdf2KeyLen     = 32 // derived digest length in bytes
	DefaultHashIters = 10000
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher derives and verifies salted password digests.
type PasswordHasher interface {
	// Hash produces a digest and a fresh random salt for the password.
	Hash(password string) (digest, salt []byte, err error)

	// Verify reports whether the password matches the stored digest.
	// Returns false on any mismatch or malformed input; it never errors,
	// so callers can treat it as a plain boolean gate.
	Verify(password string, digest, salt []byte) bool
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2 with HMAC-SHA-512.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a hasher with the default iteration count.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{iterations: DefaultHashIters}
}

// NewPBKDF2HasherWithIterations creates a hasher with a custom iteration count.
// Counts below the default are rejected to keep the derivation deliberately slow.
func NewPBKDF2HasherWithIterations(iterations int) (*PBKDF2Hasher, error) {
	if iterations < DefaultHashIters {
		return nil, oops.Code("AUTH_WEAK_HASH_PARAMS").
			With("iterations", iterations).
			With("minimum", DefaultHashIters).
			Errorf("iteration count below minimum")
	}
	return &PBKDF2Hasher{iterations: iterations}, nil
}

// Hash produces a 32-byte digest and a fresh 32-byte random salt.
func (h *PBKDF2Hasher) Hash(password string) (digest, salt []byte, err error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt = make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	digest = pbkdf2.Key([]byte(password), salt, h.iterations, pbkdf2KeyLen, sha512.New)
	return digest, salt, nil
}

// Verify recomputes the digest with the stored salt and compares in constant time.
func (h *PBKDF2Hasher) Verify(password string, digest, salt []byte) bool {
	if password == "" || len(digest) == 0 || len(salt) == 0 {
		return false
	}
	computed := pbkdf2.Key([]byte(password), salt, h.iterations, len(digest), sha512.New)
	return subtle.ConstantTimeCompare(computed, digest) == 1
}

// Compile-time interface check.
var _ PasswordHasher = (*PBKDF2Hasher)(nil)
