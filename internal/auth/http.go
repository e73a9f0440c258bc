// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

/*
HTTP delivery layer for the credential and session lifecycle.

The handler acts as a thin mediation layer between the web and the [Service]:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/identra/identra/internal/platform/apperr"
	"github.com/identra/identra/internal/platform/constants"
	"github.com/identra/identra/internal/platform/middleware"
	requestutil "github.com/identra/identra/internal/platform/request"
	"github.com/identra/identra/internal/platform/respond"
	"github.com/identra/identra/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with session lifecycle routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Authenticates and returns a token pair.
//   - POST /refresh  : Rotates a refresh token.
//   - POST /logout   : Revokes every active session (authenticated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
		r.Get("/sessions", handler.sessions)
	})

	return router
}

// AdminRoutes returns a [chi.Router] with account administration endpoints.
// The caller is responsible for mounting it behind [middleware.RequireRole].
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listUsers)
	router.Delete("/{id}", handler.deleteUser)
	router.Post("/{id}/deactivate", handler.deactivateUser)

	return router
}

// # Request Payloads

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for email conflicts, and persists a new
account. No tokens are issued at registration.

Request:
  - Body: registerRequest (Email, Password, ConfirmPassword)

Response:
  - 201: RegisterResult: Created account identity
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Equal(FieldConfirmPassword, input.Password, input.ConfirmPassword, "The passwords don't match")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates the JWT access token, and injects
a secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token, refresh token and user profile
  - 401: ErrUnauthorized: Invalid credentials or inactive account
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, handler.authService.refreshTokenTTL)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldExpiresAt:    session.ExpiresAt,
		FieldUser:         session.User.ToPublic(),
	})
}

/*
Refresh rotates a refresh token into a new token pair.

POST /api/v1/auth/refresh

Description: Accepts the refresh token from the JSON body or, for browser
clients, from the HttpOnly cookie. The presented token is permanently revoked
and replaced.

Request:
  - Body: refreshRequest (RefreshToken, optional when cookie present)

Response:
  - 200: TokenPair: New access and refresh tokens
  - 401: ErrUnauthorized: Missing, invalid, expired or already-used token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	// Body decode failures are tolerated here: cookie-based browser clients
	// send an empty body.
	_ = requestutil.DecodeJSON(request, &input)

	tokenValue := input.RefreshToken
	if tokenValue == "" {
		if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
			tokenValue = cookie.Value
		}
	}

	if tokenValue == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	pair, err := handler.authService.RefreshSession(request.Context(), tokenValue)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, pair.RefreshToken, handler.authService.refreshTokenTTL)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  pair.AccessToken,
		FieldRefreshToken: pair.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresAt:    pair.ExpiresAt,
	})
}

/*
Logout revokes every active session of the authenticated user.

POST /api/v1/auth/logout

Description: Bulk-revokes the user's refresh tokens and clears the security
cookie. Idempotent: a user with no active sessions still gets 204.

Response:
  - 204: No Content: Sessions terminated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
Me returns the authenticated user's own profile.

GET /api/v1/auth/me

Response:
  - 200: PublicUser: Own account projection
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// sessionView is the client-safe projection of an active refresh token.
// The opaque token value is never echoed back.
type sessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
Sessions lists the authenticated user's active refresh sessions.

GET /api/v1/auth/sessions

Response:
  - 200: []sessionView: Active sessions (token values omitted)
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) sessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokens, err := handler.authService.ListActiveSessions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := make([]sessionView, 0, len(tokens))
	for _, token := range tokens {
		views = append(views, sessionView{
			ID:        token.ID,
			CreatedAt: token.CreatedAt,
			ExpiresAt: token.ExpiresAt,
		})
	}

	respond.OK(writer, views)
}

/*
ListUsers returns every account in its public-safe shape.

GET /api/v1/users

Response:
  - 200: []PublicUser: Account projections (no password hashes)
  - 403: ErrForbidden: Admin role required
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.authService.ListUsers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
DeleteUser permanently removes an account.

DELETE /api/v1/users/{id}

Response:
  - 204: No Content: Account removed
  - 404: ErrNotFound: No such account
  - 403: ErrForbidden: Admin role required
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required(FieldUserID, id).UUID(FieldUserID, id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DeleteUser(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DeactivateUser disables an account without removing it.

POST /api/v1/users/{id}/deactivate

Response:
  - 204: No Content: Account disabled, sessions revoked
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) deactivateUser(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.Required(FieldUserID, id).UUID(FieldUserID, id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.DeactivateUser(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Cookie Helpers

func setRefreshCookie(writer http.ResponseWriter, token string, validity time.Duration) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  time.Now().Add(validity),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
