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
TestNewPassword_MinimumLength verifies the weak-password policy.
*/
func TestNewPassword_MinimumLength(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		isValid   bool
	}{
		{"empty", "", false},
		{"five_chars", "abcde", false},
		{"six_chars", "abcdef", true},
		{"long", "correct horse battery staple", true},
		// Multibyte input is measured in characters, not bytes: "ñññ" is
		// 6 bytes but only 3 characters.
		{"three_multibyte_chars", "ñññ", false},
		{"six_multibyte_chars", "ññññññ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewPassword(tt.plaintext)

			if tt.isValid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			}
		})
	}
}

/*
TestPassword_Verify checks that only the original plaintext verifies.
*/
func TestPassword_Verify(t *testing.T) {
	password, err := auth.NewPassword("secret1")
	require.NoError(t, err)

	assert.True(t, password.Verify("secret1"))
	assert.False(t, password.Verify("secret2"))
	assert.False(t, password.Verify(""))
	assert.False(t, password.Verify("SECRET1"))
}

/*
TestPassword_NeverStoresPlaintext checks that the stored hash differs from
the input secret.
*/
func TestPassword_NeverStoresPlaintext(t *testing.T) {
	password, err := auth.NewPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", password.Hash())
	assert.NotContains(t, password.Hash(), "secret1")
}

/*
TestPasswordFromHash verifies the trusted-storage reconstruction path:
no re-hashing, and verification still works against the original secret.
*/
func TestPasswordFromHash(t *testing.T) {
	original, err := auth.NewPassword("secret1")
	require.NoError(t, err)

	restored := auth.PasswordFromHash(original.Hash())

	assert.Equal(t, original.Hash(), restored.Hash())
	assert.True(t, restored.Verify("secret1"))
	assert.False(t, restored.Verify("other"))
}
