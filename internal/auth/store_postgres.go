// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

// # Storage Layer
//
// Repositories in this file are strictly separated from domain logic. They
// implement the domain-defined interfaces ([UserRepository],
// [RefreshTokenRepository]) using the [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or unique-constraint violations)
// are mapped to domain-friendly [apperr.AppError] types to avoid leaking
// storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/identra/identra/internal/platform/apperr"
	"github.com/identra/identra/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userRow is the flat scan target used to rebuild the [User] aggregate.
// Value objects are reconstructed through their trusted-storage factories.
type userRow struct {
	id        string
	email     string
	hash      string
	role      string
	isActive  bool
	createdAt time.Time
	updatedAt *time.Time
}

func (row *userRow) toEntity() *User {
	return &User{
		ID:        row.id,
		Email:     EmailFromStorage(row.email),
		Password:  PasswordFromHash(row.hash),
		Role:      sec.ParseUserRole(row.role),
		IsActive:  row.isActive,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
}

/*
Create persists a new user record into the auth.account table.

Description: Deep-persists account state. Unique-email races lost at the
database level surface as apperr.Conflict, never as raw SQL errors.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO auth.account (
			id, email, passwordhash, role, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email.String(),
		user.Password.Hash(),
		string(user.Role),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("A user with this email already exists.")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, role, isactive, createdat, updatedat
		FROM auth.account
		WHERE id = $1`

	row := &userRow{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&row.id,
		&row.email,
		&row.hash,
		&row.role,
		&row.isActive,
		&row.createdAt,
		&row.updatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return row.toEntity(), nil
}

/*
FindByEmail retrieves a user record by their normalized email address.

Description: Case-insensitive lookup over the LOWER(email) index. Filtering
happens at the store level; the full account table is never loaded into memory.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, role, isactive, createdat, updatedat
		FROM auth.account
		WHERE LOWER(email) = LOWER($1)`

	row := &userRow{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&row.id,
		&row.email,
		&row.hash,
		&row.role,
		&row.isActive,
		&row.createdAt,
		&row.updatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return row.toEntity(), nil
}

/*
ExistsByEmail checks for a registered account with the normalized email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - bool: Existence flag
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ExistsByEmail(context context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM auth.account WHERE LOWER(email) = LOWER($1))`

	var exists bool
	if err := repository.pool.QueryRow(context, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_by_email_failed: %w", err)
	}

	return exists, nil
}

/*
Update persists changes to a user's mutable fields.

Description: Synchronizes the in-memory aggregate state with the database.
UpdatedAt is stamped by the entity's mutation methods, not here.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict on duplicate email, or update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE auth.account
		SET email = $2, passwordhash = $3, role = $4, isactive = $5, updatedat = $6
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email.String(),
		user.Password.Hash(),
		string(user.Role),
		user.IsActive,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("A user with this email already exists.")
		}
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete permanently removes a user account by ID.

Description: Administrative removal. Refresh tokens owned by the account are
removed by the ON DELETE CASCADE constraint on auth.refresh_token.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM auth.account WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}
	return nil
}

/*
ListAll returns every registered account.

Parameters:
  - context: context.Context

Returns:
  - []*User: Hydrated entities
  - error: Retrieval errors
*/
func (repository *PostgresUserRepository) ListAll(context context.Context) ([]*User, error) {
	const query = `
		SELECT id, email, passwordhash, role, isactive, createdat, updatedat
		FROM auth.account
		ORDER BY createdat`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_all_failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		row := &userRow{}
		if err := rows.Scan(
			&row.id,
			&row.email,
			&row.hash,
			&row.role,
			&row.isActive,
			&row.createdAt,
			&row.updatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, row.toEntity())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return users, nil
}

// # Refresh Token Repository

// PostgresRefreshTokenRepository implements the RefreshTokenRepository interface.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

/*
Create persists a new token record into the auth.refresh_token table.

Parameters:
  - context: context.Context
  - token: *RefreshToken

Returns:
  - error: Storage failures
*/
func (repository *PostgresRefreshTokenRepository) Create(context context.Context, token *RefreshToken) error {
	const query = `
		INSERT INTO auth.refresh_token (
			id, userid, token, expiresat, createdat, isrevoked, revokedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
		token.IsRevoked,
		token.RevokedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_token_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByValue retrieves a token record by its opaque value.

Description: Resolves the opaque lookup key into the full state record. The
row is returned regardless of revocation/expiry so the service layer can
report uniform errors for every inactive state.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *RefreshToken: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRefreshTokenRepository) FindByValue(context context.Context, value string) (*RefreshToken, error) {
	const query = `
		SELECT id, userid, token, expiresat, createdat, isrevoked, revokedat
		FROM auth.refresh_token
		WHERE token = $1`

	token := &RefreshToken{}
	err := repository.pool.QueryRow(context, query, value).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.IsRevoked,
		&token.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Refresh token")
		}
		return nil, fmt.Errorf("postgres_token_repo_find_by_value_failed: %w", err)
	}

	return token, nil
}

/*
RevokeActive conditionally marks a token as revoked.

Description: The WHERE isrevoked = FALSE guard makes the revocation an
optimistic-concurrency barrier: when two rotation attempts race on the same
token, exactly one UPDATE affects the row.

Parameters:
  - context: context.Context
  - id: string
  - revokedAt: time.Time

Returns:
  - bool: true iff this call won the revocation
  - error: Execution errors
*/
func (repository *PostgresRefreshTokenRepository) RevokeActive(context context.Context, id string, revokedAt time.Time) (bool, error) {
	const query = `
		UPDATE auth.refresh_token
		SET isrevoked = TRUE, revokedat = $2
		WHERE id = $1 AND isrevoked = FALSE`

	result, err := repository.pool.Exec(context, query, id, revokedAt)
	if err != nil {
		return false, fmt.Errorf("postgres_token_repo_revoke_failed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

/*
RevokeAllForUser marks all active tokens for a user as revoked.

Description: Bulk state transition backing logout. A user with zero active
tokens results in zero affected rows, which is not an error.

Parameters:
  - context: context.Context
  - userID: string
  - revokedAt: time.Time

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresRefreshTokenRepository) RevokeAllForUser(context context.Context, userID string, revokedAt time.Time) error {
	const query = `
		UPDATE auth.refresh_token
		SET isrevoked = TRUE, revokedat = $2
		WHERE userid = $1 AND isrevoked = FALSE AND expiresat > NOW()`

	_, err := repository.pool.Exec(context, query, userID, revokedAt)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_revoke_all_failed: %w", err)
	}
	return nil
}

/*
ListActiveForUser returns the unrevoked, unexpired tokens owned by a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*RefreshToken: Hydrated entities
  - error: Retrieval errors
*/
func (repository *PostgresRefreshTokenRepository) ListActiveForUser(context context.Context, userID string) ([]*RefreshToken, error) {
	const query = `
		SELECT id, userid, token, expiresat, createdat, isrevoked, revokedat
		FROM auth.refresh_token
		WHERE userid = $1 AND isrevoked = FALSE AND expiresat > NOW()
		ORDER BY createdat`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_token_repo_list_active_failed: %w", err)
	}
	defer rows.Close()

	var tokens []*RefreshToken
	for rows.Next() {
		token := &RefreshToken{}
		if err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.Token,
			&token.ExpiresAt,
			&token.CreatedAt,
			&token.IsRevoked,
			&token.RevokedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_token_repo_list_scan_failed: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_token_repo_list_rows_failed: %w", err)
	}

	return tokens, nil
}

/*
Delete permanently removes a single token record.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresRefreshTokenRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM auth.refresh_token WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_delete_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all tokens that have passed their expiration.

Description: Cleanup task to reclaim storage from stale tokens. Revoked rows
inside their validity window are retained for auditability.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of rows removed
  - error: Cleanup failures
*/
func (repository *PostgresRefreshTokenRepository) DeleteExpired(context context.Context) (int64, error) {
	const query = "DELETE FROM auth.refresh_token WHERE expiresat <= NOW()"
	result, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_token_repo_delete_expired_failed: %w", err)
	}
	return result.RowsAffected(), nil
}

// # Helpers

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
