package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"libraryapi/internal/testutil"
)

func gateTestHandler(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return AuthenticatedOrReadOnly(testutil.Secret)(next), &called
}

func TestAuthenticatedOrReadOnly_ReadPassesWithoutToken(t *testing.T) {
	handler, called := gateTestHandler(t)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		*called = false
		w := httptest.NewRecorder()
		r := httptest.NewRequest(method, "/api/books/", nil)

		handler.ServeHTTP(w, r)

		assert.True(t, *called, "method %s should pass without a token", method)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuthenticatedOrReadOnly_WriteWithoutTokenRejected(t *testing.T) {
	handler, called := gateTestHandler(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		*called = false
		w := httptest.NewRecorder()
		r := httptest.NewRequest(method, "/api/books/create/", nil)

		handler.ServeHTTP(w, r)

		assert.False(t, *called, "method %s should not reach the handler", method)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthenticatedOrReadOnly_WriteWithValidToken(t *testing.T) {
	handler, called := gateTestHandler(t)

	token := testutil.GenerateTestToken(testutil.Secret, "user-id-1", "USER")
	w := httptest.NewRecorder()
	r := testutil.NewRequestWithAuth(http.MethodPost, "/api/books/create/", nil, token)

	handler.ServeHTTP(w, r)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticatedOrReadOnly_ExpiredTokenRejected(t *testing.T) {
	handler, called := gateTestHandler(t)

	token := testutil.GenerateExpiredToken(testutil.Secret, "user-id-1", "USER")
	w := httptest.NewRecorder()
	r := testutil.NewRequestWithAuth(http.MethodDelete, "/api/books/7/delete/", nil, token)

	handler.ServeHTTP(w, r)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedOrReadOnly_InjectsUserContext(t *testing.T) {
	var gotUserID, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFrom(r)
		gotRole = RoleFrom(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthenticatedOrReadOnly(testutil.Secret)(next)

	token := testutil.GenerateTestToken(testutil.Secret, "user-id-1", "ADMIN")
	w := httptest.NewRecorder()
	r := testutil.NewRequestWithAuth(http.MethodPost, "/api/authors/", nil, token)

	handler.ServeHTTP(w, r)

	assert.Equal(t, "user-id-1", gotUserID)
	assert.Equal(t, "ADMIN", gotRole)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})
	handler := RequireAuth(testutil.Secret)(next)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/me", nil)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
