// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth

import (
	"time"

	"github.com/identra/identra/pkg/uuidv7"
)

// # Refresh Token Entity

// RefreshToken represents one rotation step in a user's session chain.
//
// # State Machine
//
//	Active  (IsRevoked = false, not expired)
//	  └─> Revoked (on rotation-use or logout; RevokedAt stamped)  — terminal
//	  └─> Expired (implicitly, when ExpiresAt elapses)            — terminal
//
// A token is never reactivated. Expiry is detected at validation time only;
// a background sweep may physically delete expired rows.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	IsRevoked bool
	RevokedAt *time.Time
}

// NewRefreshToken constructs an Active token for the given user with the
// provided opaque value and validity window.
func NewRefreshToken(userID, token string, validity time.Duration) *RefreshToken {
	return &RefreshToken{
		ID:        uuidv7.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(validity),
		CreatedAt: time.Now(),
		IsRevoked: false,
	}
}

// IsExpired reports whether the validity window has elapsed.
func (token *RefreshToken) IsExpired() bool {
	return !time.Now().Before(token.ExpiresAt)
}

// IsActive reports whether the token can still be redeemed.
// A token is Active iff it is not revoked AND not expired.
func (token *RefreshToken) IsActive() bool {
	return !token.IsRevoked && !token.IsExpired()
}

// Revoke transitions the in-memory entity to its terminal Revoked state.
//
// The authoritative transition happens in the store via a conditional update;
// this mirror keeps the entity consistent after a successful store call.
func (token *RefreshToken) Revoke(at time.Time) {
	token.IsRevoked = true
	token.RevokedAt = &at
}
