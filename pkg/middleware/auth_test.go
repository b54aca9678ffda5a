package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"linkbio/pkg/store"

	"github.com/stretchr/testify/assert"
)

func newTestMiddleware(t *testing.T) *AuthMiddleware {
	t.Helper()
	m, err := NewAuthMiddleware(AuthConfig{Secret: "test-secret", Audience: "linkbio"})
	assert.NoError(t, err)
	return m
}

func echoCallerHandler(t *testing.T, want store.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, want, GetCallerFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	m := newTestMiddleware(t)

	token, err := m.IssueToken("ST1WALLET1")
	assert.NoError(t, err)

	handler := m.Authenticate()(echoCallerHandler(t, "ST1WALLET1"))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	m := newTestMiddleware(t)

	handler := m.Authenticate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	other, err := NewAuthMiddleware(AuthConfig{Secret: "other-secret", Audience: "linkbio"})
	assert.NoError(t, err)
	token, err := other.IssueToken("ST1WALLET1")
	assert.NoError(t, err)

	m := newTestMiddleware(t)
	handler := m.Authenticate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	m := newTestMiddleware(t)

	handler := m.Authenticate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidAuthHeaderFormat(t *testing.T) {
	m := newTestMiddleware(t)

	handler := m.Authenticate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequiresSecret(t *testing.T) {
	_, err := NewAuthMiddleware(AuthConfig{})
	assert.Error(t, err)
}

func TestGetCallerFromContext_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	assert.Equal(t, store.Principal(""), GetCallerFromContext(req.Context()))
}
