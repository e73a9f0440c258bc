// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

/*
Service orchestration for the credential and session lifecycle.

The [Service] coordinates registration, login, refresh-rotation, logout, and
account removal against the repositories and the token provider. It owns every
security invariant of the system:

  - One-way password storage (bcrypt, via the Password value object).
  - One-time-use refresh tokens (conditional revocation before replacement).
  - Uniform authentication errors to prevent user/token enumeration.
  - Advisory-only caching (cache failures degrade to the authoritative store).

# Review Process

This service is critical for security. Any changes to hashing, rotation,
or login logic must be reviewed by the security team.
*/

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/identra/identra/internal/platform/apperr"
	"github.com/identra/identra/internal/platform/cache"
	"github.com/identra/identra/internal/platform/constants"
	"github.com/identra/identra/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for generating signed access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The canonical email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements the session lifecycle use cases.
type Service struct {
	userRepository  UserRepository
	tokenRepository RefreshTokenRepository
	tokenProvider   TokenProvider
	cache           *cache.Cache

	// Token lifetimes are configuration inputs, injected once at construction.
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	tokenRepo RefreshTokenRepository,
	tokenProv TokenProvider,
	cacheStore *cache.Cache,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) *Service {
	return &Service{
		userRepository:  userRepo,
		tokenRepository: tokenRepo,
		tokenProvider:   tokenProv,
		cache:           cacheStore,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterResult is returned on successful enrollment. No tokens are issued
// at registration; the user must log in explicitly.
type RegisterResult struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enforces password confirmation, email validity, and email
uniqueness before persisting. The new account receives the lowest-privilege
role and starts active.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Identity of the created account
  - err: ValidationError, Conflict (if email taken) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {

	// ── 1. Confirmation Check ─────────────────────────────────────────────
	if input.Password != input.ConfirmPassword {
		return nil, apperr.ValidationError("The passwords don't match")
	}

	// ── 2. Email Validation ───────────────────────────────────────────────
	email, err := NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	// ── 3. Uniqueness Check ───────────────────────────────────────────────
	// Filtered at the store level over the LOWER(email) index. The database
	// unique constraint still backstops concurrent registrations.
	exists, err := service.userRepository.ExistsByEmail(context, email.Normalized())
	if err != nil {
		return nil, fmt.Errorf("auth_service_email_check_failed: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("A user with this email already exists.")
	}

	// ── 4. Password Hashing ───────────────────────────────────────────────
	password, err := NewPassword(input.Password)
	if err != nil {
		return nil, err
	}

	// ── 5. Persistence ────────────────────────────────────────────────────
	user := NewUser(email, password)
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// The account listing is stale now; drop the advisory cache entry.
	service.invalidateUserList(context)

	return &RegisterResult{
		UserID:  user.ID,
		Email:   user.Email.String(),
		Message: "User registered successfully",
	}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *User
}

/*
Login validates user credentials and issues a token pair.

Description: Verifies identity with constant-time password comparison and
initializes a new session. Every credential failure reports the identical
message so callers cannot enumerate registered emails.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: ValidationError, Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// ── 1. Input Presence ─────────────────────────────────────────────────
	if input.Email == "" || input.Password == "" {
		return nil, apperr.ValidationError("Email and password are required")
	}

	// ── 2. Account Lookup ─────────────────────────────────────────────────
	// Only a missing account collapses into the generic message; a failing
	// store must surface as a server error, not an authentication failure.
	user, err := service.userRepository.FindByEmail(context, normalizeEmailInput(input.Email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("incorrect email or password")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// ── 3. Activity Gate ──────────────────────────────────────────────────
	if !user.IsActive {
		return nil, apperr.Unauthorized("account inactive")
	}

	// ── 4. Credential Verification ────────────────────────────────────────
	// Same message as the missing-user case. bcrypt's comparison is constant-time.
	if !user.Password.Verify(input.Password) {
		return nil, apperr.Unauthorized("incorrect email or password")
	}

	// ── 5. Token Issuance ─────────────────────────────────────────────────
	session, err := service.issueSession(context, user)
	if err != nil {
		return nil, err
	}

	return session, nil
}

/*
Logout revokes every currently active refresh token owned by the user.

Description: Bulk terminal state transition. The operation is idempotent:
logging out a user with no active tokens reports success.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.tokenRepository.RevokeAllForUser(context, userID, time.Now()); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Rotation

// TokenPair is the result of a successful refresh rotation.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

/*
RefreshSession implements the refresh token rotation mechanism.

Description: Verifies the presented token, revokes it through a conditional
update BEFORE issuing its replacement, and returns a fresh pair. A given token
value can be redeemed exactly once: concurrent attempts race on the store's
isrevoked guard and at most one wins.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New session credentials
  - err: ValidationError, Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*TokenPair, error) {

	// ── 1. Input Presence ─────────────────────────────────────────────────
	if refreshToken == "" {
		return nil, apperr.ValidationError("Refresh token is required")
	}

	// ── 2. Token Lookup ───────────────────────────────────────────────────
	stored, err := service.tokenRepository.FindByValue(context, refreshToken)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, fmt.Errorf("auth_service_token_lookup_failed: %w", err)
	}

	// ── 3. Activity Check ─────────────────────────────────────────────────
	// Revoked and expired report the same message so callers cannot tell which.
	if !stored.IsActive() {
		return nil, apperr.Unauthorized("Refresh token is invalid or revoked")
	}

	// ── 4. Owner Resolution ───────────────────────────────────────────────
	user, err := service.userRepository.FindByID(context, stored.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("User not found or inactive")
		}
		return nil, fmt.Errorf("auth_service_owner_lookup_failed: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}

	// ── 5. One-Time-Use Barrier ───────────────────────────────────────────
	// Conditional revocation guarded on isrevoked = FALSE. A concurrent
	// rotation that already redeemed this value makes revoked == false here,
	// and this caller fails exactly like a replayed token.
	now := time.Now()
	revoked, err := service.tokenRepository.RevokeActive(context, stored.ID, now)
	if err != nil {
		return nil, fmt.Errorf("auth_service_rotation_revoke_failed: %w", err)
	}
	if !revoked {
		return nil, apperr.Unauthorized("Refresh token is invalid or revoked")
	}
	stored.Revoke(now)

	// ── 6. Replacement Issuance ───────────────────────────────────────────
	session, err := service.issueSession(context, user)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

/*
ListActiveSessions returns the active refresh tokens owned by a user.

Description: Supports the session overview endpoint. Token values are included
in the entities; the HTTP layer is responsible for projecting them safely.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*RefreshToken: Active tokens
  - err: Retrieval failures
*/
func (service *Service) ListActiveSessions(context context.Context, userID string) ([]*RefreshToken, error) {
	tokens, err := service.tokenRepository.ListActiveForUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_sessions_failed: %w", err)
	}
	return tokens, nil
}

// # Account Administration

/*
GetUser returns the public projection of a single account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *PublicUser: Client-safe projection
  - err: NotFound or retrieval failures
*/
func (service *Service) GetUser(context context.Context, userID string) (*PublicUser, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.ToPublic(), nil
}

/*
DeleteUser permanently removes an account and all of its refresh tokens.

Description: Administrative removal. Cascade deletion of owned tokens is the
storage layer's responsibility.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: NotFound or removal failures
*/
func (service *Service) DeleteUser(context context.Context, userID string) error {

	// Resolve first so a missing account reports NotFound, not silent success.
	if _, err := service.userRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.userRepository.Delete(context, userID); err != nil {
		return fmt.Errorf("auth_service_delete_user_failed: %w", err)
	}

	service.invalidateUserList(context)
	return nil
}

/*
DeactivateUser disables an account without removing it, then revokes all of
its active sessions.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: NotFound or persistence failures
*/
func (service *Service) DeactivateUser(context context.Context, userID string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	user.Deactivate()
	if err := service.userRepository.Update(context, user); err != nil {
		return fmt.Errorf("auth_service_deactivate_failed: %w", err)
	}
	service.invalidateUserList(context)

	// A disabled account must not retain usable sessions. The inactive gate at
	// rotation already blocks them, but a failed sweep is still reported.
	if err := service.tokenRepository.RevokeAllForUser(context, userID, time.Now()); err != nil {
		return fmt.Errorf("auth_service_deactivate_revoke_failed: %w", err)
	}

	return nil
}

/*
ListUsers returns all accounts projected to their public-safe shape.

Description: Served from the advisory cache when warm. Cache misses and cache
errors degrade to the authoritative store, never to incorrect data.

Parameters:
  - context: context.Context

Returns:
  - []*PublicUser: Client-safe projections
  - err: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context) ([]*PublicUser, error) {

	var cached []*PublicUser
	if service.cache != nil && service.cache.Get(context, constants.UserListCacheKey, &cached) {
		return cached, nil
	}

	users, err := service.userRepository.ListAll(context)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_users_failed: %w", err)
	}

	projected := make([]*PublicUser, 0, len(users))
	for _, user := range users {
		projected = append(projected, user.ToPublic())
	}

	if service.cache != nil {
		service.cache.Set(context, constants.UserListCacheKey, projected, constants.UserListCacheTTL)
	}

	return projected, nil
}

// # Internal Helpers

// issueSession mints an access token and a persisted refresh token for the user.
func (service *Service) issueSession(context context.Context, user *User) (*LoginSession, error) {

	expiresAt := time.Now().Add(service.accessTokenTTL)
	accessToken, err := service.tokenProvider.GenerateAccessToken(
		user.ID, user.Email.String(), string(user.Role), service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Opaque lookup key. Secrecy and uniqueness are its only security
	// properties; it carries no embedded claims.
	refreshValue, err := sec.GenerateSecureToken(sec.RefreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	refreshToken := NewRefreshToken(user.ID, refreshValue, service.refreshTokenTTL)
	if err := service.tokenRepository.Create(context, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

// invalidateUserList drops the cached account listing after any mutation.
func (service *Service) invalidateUserList(context context.Context) {
	if service.cache != nil {
		service.cache.Remove(context, constants.UserListCacheKey)
	}
}
