// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account matching the normalized (case-insensitive) email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		ExistsByEmail reports whether an account with the normalized email exists.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - bool: Existence flag
		  - error: Database retrieval failures
	*/
	ExistsByEmail(context context.Context, email string) (bool, error)

	/*
		Create persists a brand-new user account to the storage.
		Unique-email violations are translated to apperr.Conflict.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists changes to the account's mutable fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		Delete permanently removes the account. Owned refresh tokens are
		cascade-deleted by the storage layer.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		ListAll returns every registered account.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*User: Hydrated entities
		  - error: Database retrieval failures
	*/
	ListAll(context context.Context) ([]*User, error)
}

// # Refresh Token Data Access

// RefreshTokenRepository defines the data access contract for refresh tokens.
type RefreshTokenRepository interface {

	/*
		FindByValue returns the token record matching the opaque value.
		The lookup does NOT filter on revocation/expiry: the service inspects
		state itself so it can report uniform errors.

		Parameters:
		  - context: context.Context
		  - value: string

		Returns:
		  - *RefreshToken: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByValue(context context.Context, value string) (*RefreshToken, error)

	/*
		Create persists a new refresh token for an authenticated session.

		Parameters:
		  - context: context.Context
		  - token: *RefreshToken

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *RefreshToken) error

	/*
		RevokeActive conditionally revokes the token identified by id, guarded
		on the row still being unrevoked. This is the one-time-use barrier:
		under concurrent rotation attempts at most one caller observes
		revoked = true.

		Parameters:
		  - context: context.Context
		  - id: string
		  - revokedAt: time.Time

		Returns:
		  - bool: true iff this call performed the revocation
		  - error: Persistence failures
	*/
	RevokeActive(context context.Context, id string, revokedAt time.Time) (bool, error)

	/*
		RevokeAllForUser revokes every currently active token owned by userID.
		Revoking a user with zero active tokens is not an error.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - revokedAt: time.Time

		Returns:
		  - error: Batch revocation failures
	*/
	RevokeAllForUser(context context.Context, userID string, revokedAt time.Time) error

	/*
		ListActiveForUser returns the tokens owned by userID that are neither
		revoked nor expired.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*RefreshToken: Hydrated entities
		  - error: Database retrieval failures
	*/
	ListActiveForUser(context context.Context, userID string) ([]*RefreshToken, error)

	/*
		Delete permanently removes a single token record.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		DeleteExpired physically removes tokens whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - int64: Number of rows removed
		  - error: Cleanup failures
	*/
	DeleteExpired(context context.Context) (int64, error)
}
