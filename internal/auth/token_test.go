// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/identra/identra/internal/auth"
)

/*
TestNewRefreshToken verifies the initial Active state.
*/
func TestNewRefreshToken(t *testing.T) {
	token := auth.NewRefreshToken("user-1", "opaque-value", 24*time.Hour)

	assert.NotEmpty(t, token.ID)
	assert.Equal(t, "user-1", token.UserID)
	assert.Equal(t, "opaque-value", token.Token)
	assert.False(t, token.IsRevoked)
	assert.Nil(t, token.RevokedAt)
	assert.True(t, token.IsActive())
	assert.False(t, token.IsExpired())
}

/*
TestRefreshToken_Expired verifies that an expired token is never Active,
even when it was never revoked.
*/
func TestRefreshToken_Expired(t *testing.T) {
	token := auth.NewRefreshToken("user-1", "opaque-value", -time.Minute)

	assert.False(t, token.IsRevoked)
	assert.True(t, token.IsExpired())
	assert.False(t, token.IsActive())
}

/*
TestRefreshToken_Revoke verifies the terminal Revoked transition.
*/
func TestRefreshToken_Revoke(t *testing.T) {
	token := auth.NewRefreshToken("user-1", "opaque-value", 24*time.Hour)

	revokedAt := time.Now()
	token.Revoke(revokedAt)

	assert.True(t, token.IsRevoked)
	assert.NotNil(t, token.RevokedAt)
	assert.Equal(t, revokedAt, *token.RevokedAt)
	assert.False(t, token.IsActive())
}
