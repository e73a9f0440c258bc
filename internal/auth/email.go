// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth

import (
	"net/mail"
	"strings"

	"github.com/identra/identra/internal/platform/apperr"
)

// # Email Value Object

// Email wraps a syntactically validated address string.
//
// # Invariants
//
// An Email is immutable once constructed. Construction is only possible through
// [NewEmail] (untrusted input, validated) or [EmailFromStorage] (trusted
// persistence reads), so callers can never hold a malformed address.
type Email struct {
	value string
}

/*
NewEmail validates an untrusted raw string and wraps it as an [Email].

Description: Trims surrounding whitespace, parses the address grammar, and
rejects any input whose canonical form differs from what the caller sent
(trailing garbage, display names, multiple '@').

Parameters:
  - raw: string (untrusted user input)

Returns:
  - Email: Canonical value
  - error: apperr.ValidationError on malformed input
*/
func NewEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Email{}, apperr.ValidationError("invalid email format")
	}

	// ParseAddress accepts inputs like "Name <a@b.com>". Requiring the parsed
	// address to equal the input rejects those and any trailing characters.
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return Email{}, apperr.ValidationError("invalid email format")
	}

	return Email{value: trimmed}, nil
}

// EmailFromStorage reconstructs an [Email] from a value already persisted.
//
// It performs no validation: the storage layer only ever writes values that
// passed [NewEmail]. Never call this with user input.
func EmailFromStorage(stored string) Email {
	return Email{value: stored}
}

// String returns the canonical address, preserving the case the user registered with.
func (email Email) String() string {
	return email.value
}

// Normalized returns the lower-cased address used for uniqueness checks and lookups.
func (email Email) Normalized() string {
	return strings.ToLower(email.value)
}

// Equals compares two emails case-insensitively.
func (email Email) Equals(other Email) bool {
	return email.Normalized() == other.Normalized()
}

// normalizeEmailInput lower-cases and trims a raw login email for lookups.
// Login must not reject addresses that registration accepted, so no grammar
// validation happens here.
func normalizeEmailInput(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
