// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/internal/platform/constants"
	"github.com/identra/identra/internal/platform/middleware"
	"github.com/identra/identra/internal/platform/sec"
)

// fakeVerifier accepts exactly one token string and returns canned claims for it.
type fakeVerifier struct {
	token  string
	claims *sec.AuthClaims
}

func (verifier *fakeVerifier) VerifyToken(tokenStr string) (*sec.AuthClaims, error) {
	if tokenStr != verifier.token {
		return nil, errors.New("token is invalid")
	}
	return verifier.claims, nil
}

func newFakeVerifier(role string) *fakeVerifier {
	return &fakeVerifier{
		token: "valid-token",
		claims: &sec.AuthClaims{
			UserID: "user-1",
			Email:  "user@example.com",
			Role:   role,
		},
	}
}

// captureClaims records the claims visible to the downstream handler.
func captureClaims(captured **sec.AuthClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = middleware.GetUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate exercises the token extraction middleware: anonymous requests
pass through without claims, valid bearer tokens inject claims into the
context, and malformed or unverifiable tokens are rejected before reaching
the handler.
*/
func TestAuthenticate(t *testing.T) {
	testCases := []struct {
		name           string
		authorization  string
		expectedStatus int
		expectClaims   bool
	}{
		{
			name:           "anonymous_passthrough",
			authorization:  "",
			expectedStatus: http.StatusOK,
			expectClaims:   false,
		},
		{
			name:           "valid_bearer_token",
			authorization:  "Bearer valid-token",
			expectedStatus: http.StatusOK,
			expectClaims:   true,
		},
		{
			name:           "missing_scheme",
			authorization:  "valid-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong_scheme",
			authorization:  "Basic valid-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unverifiable_token",
			authorization:  "Bearer forged-token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var captured *sec.AuthClaims
			handler := middleware.Authenticate(newFakeVerifier("Customer"))(captureClaims(&captured))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if testCase.authorization != "" {
				request.Header.Set("Authorization", testCase.authorization)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, testCase.expectedStatus, recorder.Code)
			if testCase.expectClaims {
				require.NotNil(t, captured)
				assert.Equal(t, "user-1", captured.UserID)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

/*
TestRequireAuth verifies that the guard rejects anonymous requests and admits
authenticated ones.
*/
func TestRequireAuth(t *testing.T) {
	var captured *sec.AuthClaims
	chain := middleware.Authenticate(newFakeVerifier("Customer"))(
		middleware.RequireAuth(captureClaims(&captured)),
	)

	t.Run("anonymous_rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		chain.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("authenticated_admitted", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer valid-token")
		recorder := httptest.NewRecorder()
		chain.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, captured)
	})
}

/*
TestRequireRole verifies hierarchy enforcement: an Admin clears both gates, a
Customer is forbidden from Admin-only routes, and anonymous requests are
rejected with 401 rather than 403.
*/
func TestRequireRole(t *testing.T) {
	testCases := []struct {
		name           string
		tokenRole      string
		authorization  string
		requiredRole   sec.UserRole
		expectedStatus int
	}{
		{
			name:           "admin_reaches_admin_route",
			tokenRole:      "Admin",
			authorization:  "Bearer valid-token",
			requiredRole:   sec.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "customer_forbidden_from_admin_route",
			tokenRole:      "Customer",
			authorization:  "Bearer valid-token",
			requiredRole:   sec.RoleAdmin,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "admin_reaches_customer_route",
			tokenRole:      "Admin",
			authorization:  "Bearer valid-token",
			requiredRole:   sec.RoleCustomer,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "anonymous_gets_unauthorized_not_forbidden",
			tokenRole:      "Admin",
			authorization:  "",
			requiredRole:   sec.RoleAdmin,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var captured *sec.AuthClaims
			chain := middleware.Authenticate(newFakeVerifier(testCase.tokenRole))(
				middleware.RequireRole(testCase.requiredRole)(captureClaims(&captured)),
			)

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if testCase.authorization != "" {
				request.Header.Set("Authorization", testCase.authorization)
			}
			recorder := httptest.NewRecorder()

			chain.ServeHTTP(recorder, request)

			assert.Equal(t, testCase.expectedStatus, recorder.Code)
		})
	}
}

/*
TestRequestID checks both branches of correlation ID handling: a client
supplied ID is echoed back unchanged, and a missing ID is replaced with a
generated one.
*/
func TestRequestID(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	t.Run("client_id_preserved", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "client-supplied-id")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "client-supplied-id", recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("missing_id_generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))
	})
}
