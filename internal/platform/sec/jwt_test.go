// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/platform/sec"
)

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("test-secret-key", "identra.test", "identra.test")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that a generated token carries the user
claims back through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "a@b.com", "Customer", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "Customer", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "identra.test", claims.Issuer)
}

/*
TestTokenService_EmptySecret verifies that construction rejects a missing key.
*/
func TestTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "identra.test", "identra.test")
	require.Error(t, err)
}

/*
TestTokenService_WrongKey checks that a token signed with another key fails
verification.
*/
func TestTokenService_WrongKey(t *testing.T) {
	service := newTestTokenService(t)

	other, err := sec.NewTokenService("another-secret-key", "identra.test", "identra.test")
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("user-1", "a@b.com", "Customer", time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
}

/*
TestTokenService_Expired checks zero clock-skew expiry enforcement.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "a@b.com", "Customer", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
}

/*
TestTokenService_IssuerAudienceMismatch checks that tokens minted for another
deployment are rejected.
*/
func TestTokenService_IssuerAudienceMismatch(t *testing.T) {
	service := newTestTokenService(t)

	tests := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"wrong_issuer", "other.app", "identra.test"},
		{"wrong_audience", "identra.test", "other.app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			foreign, err := sec.NewTokenService("test-secret-key", tt.issuer, tt.audience)
			require.NoError(t, err)

			token, err := foreign.GenerateAccessToken("user-1", "a@b.com", "Customer", time.Hour)
			require.NoError(t, err)

			_, err = service.VerifyToken(token)
			require.Error(t, err)
		})
	}
}

/*
TestTokenService_ExtractUserID verifies that extraction only works on valid tokens.
*/
func TestTokenService_ExtractUserID(t *testing.T) {
	service := newTestTokenService(t)

	token, err := service.GenerateAccessToken("user-1", "a@b.com", "Customer", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "user-1", service.ExtractUserID(token))
	assert.Equal(t, "", service.ExtractUserID("garbage"))
	assert.Equal(t, "", service.ExtractUserID(""))
}

/*
TestUserRole_AtLeast verifies the role hierarchy comparison.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleCustomer))
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleAdmin))
	assert.True(t, sec.RoleCustomer.AtLeast(sec.RoleCustomer))
	assert.False(t, sec.RoleCustomer.AtLeast(sec.RoleAdmin))
}

/*
TestParseUserRole verifies the fallback to the lowest-privilege role.
*/
func TestParseUserRole(t *testing.T) {
	assert.Equal(t, sec.RoleAdmin, sec.ParseUserRole("Admin"))
	assert.Equal(t, sec.RoleCustomer, sec.ParseUserRole("Customer"))
	assert.Equal(t, sec.RoleCustomer, sec.ParseUserRole("unknown"))
	assert.Equal(t, sec.RoleCustomer, sec.ParseUserRole(""))
}
