// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/auth"
	"github.com/identra/identra/internal/platform/apperr"
)

/*
TestNewEmail_Malformed verifies that construction rejects invalid addresses
with a validation error.
*/
func TestNewEmail_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace_only", "   "},
		{"no_at_sign", "plainaddress"},
		{"missing_domain", "user@"},
		{"missing_local_part", "@example.com"},
		{"double_at", "user@@example.com"},
		{"display_name_form", "John <user@example.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewEmail(tt.raw)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, "invalid email format", ae.Message)
		})
	}
}

/*
TestNewEmail_Valid verifies that well-formed addresses survive construction
with their case preserved.
*/
func TestNewEmail_Valid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"simple", "user@example.com"},
		{"mixed_case", "User.Name@Example.COM"},
		{"plus_tag", "user+tag@example.com"},
		{"surrounding_whitespace", "  user@example.com  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := auth.NewEmail(tt.raw)
			require.NoError(t, err)
			assert.NotEmpty(t, email.String())
		})
	}
}

/*
TestEmail_Normalized checks the lower-cased form used for lookups.
*/
func TestEmail_Normalized(t *testing.T) {
	email, err := auth.NewEmail("User.Name@Example.COM")
	require.NoError(t, err)

	// Canonical form preserves case; normalized form does not.
	assert.Equal(t, "User.Name@Example.COM", email.String())
	assert.Equal(t, "user.name@example.com", email.Normalized())
}

/*
TestEmail_Equals checks case-insensitive equality.
*/
func TestEmail_Equals(t *testing.T) {
	first, err := auth.NewEmail("a@b.com")
	require.NoError(t, err)

	second, err := auth.NewEmail("A@B.COM")
	require.NoError(t, err)

	assert.True(t, first.Equals(second))
}
