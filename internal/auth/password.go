// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth

import (
	"fmt"
	"unicode/utf8"

	"github.com/identra/identra/internal/platform/apperr"
	"github.com/identra/identra/internal/platform/sec"
)

// MinPasswordLength is the minimum accepted plaintext length for new passwords.
const MinPasswordLength = 6

// # Password Value Object

// Password wraps a one-way bcrypt hash.
//
// # Invariants
//
// The plaintext is consumed inside [NewPassword] and never retained; the only
// way to interact with the secret afterwards is the constant-time [Password.Verify].
// [PasswordFromHash] exists solely for the persistence mapping layer and
// performs no re-hashing.
type Password struct {
	hash string
}

/*
NewPassword hashes an untrusted plaintext secret into a [Password].

Description: Enforces the minimum length policy, then derives a salted bcrypt
hash. The plaintext is never stored, logged, or serialized.

Parameters:
  - plaintext: string (untrusted user input)

Returns:
  - Password: Hash-backed value
  - error: apperr.ValidationError on weak input, or hashing failures
*/
func NewPassword(plaintext string) (Password, error) {
	// Length is measured in Unicode characters, matching the HTTP validator.
	if utf8.RuneCountInString(plaintext) < MinPasswordLength {
		return Password{}, apperr.ValidationError(
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	hash, err := sec.HashPassword(plaintext)
	if err != nil {
		return Password{}, fmt.Errorf("password_hash_failed: %w", err)
	}

	return Password{hash: hash}, nil
}

// PasswordFromHash reconstructs a [Password] from a hash already persisted.
//
// It performs no validation or re-hashing. Never call this with user input.
func PasswordFromHash(storedHash string) Password {
	return Password{hash: storedHash}
}

// Verify reports whether the plaintext hashes to the stored value.
// The comparison is constant-time via bcrypt.
func (password Password) Verify(plaintext string) bool {
	return sec.CheckPasswordHash(plaintext, password.hash)
}

// Hash exposes the stored hash for the persistence layer.
func (password Password) Hash() string {
	return password.hash
}
