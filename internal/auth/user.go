// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, RefreshToken) and logic for
authentication, credential verification, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/identra/identra/internal/platform/sec"
	"github.com/identra/identra/pkg/uuidv7"
)

// # Domain Entities

// User represents a registered Identra account.
//
// User is the aggregate root of the session lifecycle: refresh tokens hold a
// non-owning back-reference to their user and are cascade-deleted with it.
type User struct {
	ID        string
	Email     Email
	Password  Password
	Role      sec.UserRole
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewUser constructs a brand-new active account with the lowest-privilege role.
// Time-sortable ID to prevent PG index fragmentation.
func NewUser(email Email, password Password) *User {
	return &User{
		ID:        uuidv7.New(),
		Email:     email,
		Password:  password,
		Role:      sec.RoleCustomer,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// # Mutation Operations
//
// Attributes are mutated only through these methods so UpdatedAt is always
// stamped alongside the change.

// ChangeEmail replaces the account email.
func (user *User) ChangeEmail(email Email) {
	user.Email = email
	user.touch()
}

// ChangePassword replaces the account password.
func (user *User) ChangePassword(password Password) {
	user.Password = password
	user.touch()
}

// ChangeRole replaces the account role.
func (user *User) ChangeRole(role sec.UserRole) {
	user.Role = role
	user.touch()
}

// Deactivate disables the account without removing it. Inactive accounts
// cannot log in or refresh sessions.
func (user *User) Deactivate() {
	user.IsActive = false
	user.touch()
}

// Activate re-enables a previously deactivated account.
func (user *User) Activate() {
	user.IsActive = true
	user.touch()
}

func (user *User) touch() {
	now := time.Now()
	user.UpdatedAt = &now
}

// # Projections

// PublicUser is the client-safe projection of a [User].
// It never includes the password hash.
type PublicUser struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Role      sec.UserRole `json:"role"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// ToPublic projects the entity into its client-safe shape.
func (user *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:        user.ID,
		Email:     user.Email.String(),
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldRefreshToken    = "refresh_token"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresAt       = "expires_at"
	FieldUser            = "user"
	FieldUserID          = "user_id"
	FieldMessage         = "message"
)
