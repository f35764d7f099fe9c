package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func directorClaims(exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{"sub": "director", "role": RoleDirector, "exp": exp.Unix()}
}

func protected(t *testing.T) (http.Handler, *bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		sub, err := GetSubjectFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, "director", sub)
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(testSecret)(RequireRole(RoleDirector)(next)), &called
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	h, called := protected(t)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, directorClaims(time.Now().Add(time.Hour))))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, *called)
}

func TestAuthenticateRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"wrong secret", "Bearer " + signToken(t, "other", directorClaims(time.Now().Add(time.Hour)))},
		{"expired", "Bearer " + signToken(t, testSecret, directorClaims(time.Now().Add(-time.Hour)))},
		{"garbage", "Bearer not.a.token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, called := protected(t)
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, *called)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestRequireRoleRejectsUnknownRole(t *testing.T) {
	h, called := protected(t)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "someone", "role": "spectator", "exp": time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	h := RequireRole(RoleDirector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
