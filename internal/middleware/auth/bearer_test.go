package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/contacts/internal/models"
	"github.com/Skotchmaster/contacts/internal/service"
	"github.com/Skotchmaster/contacts/internal/tokens"
)

type stubAuthenticator struct {
	user *models.User
	err  error
	got  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	s.got = token
	return s.user, s.err
}

func serve(t *testing.T, svc Authenticator, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	called := false
	e.GET("/private", func(c echo.Context) error {
		called = true
		u, ok := UserFromContext(c)
		require.True(t, ok)
		id, ok := UserIDFromContext(c)
		require.True(t, ok)
		require.Equal(t, u.ID, id)
		return c.String(http.StatusOK, u.Username)
	}, NewBearerAuth(svc).RequireAuth)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, called
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestRequireAuth_NoHeader(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"", "Bearer", "Bearer    ", "Bearer  abc", "token-without-scheme"} {
		header := header
		t.Run(fmt.Sprintf("%q", header), func(t *testing.T) {
			t.Parallel()

			stub := &stubAuthenticator{}
			rec, called := serve(t, stub, header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Access token required", message(t, rec))
			assert.Empty(t, stub.got)
		})
	}
}

func TestRequireAuth_VerifyFails(t *testing.T) {
	t.Parallel()

	stub := &stubAuthenticator{err: tokens.ErrTokenExpired}
	rec, called := serve(t, stub, "Bearer abc.def.ghi")
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid or expired token", message(t, rec))
	assert.Equal(t, "abc.def.ghi", stub.got)
}

func TestRequireAuth_AnySchemeIsVerified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		token  string
	}{
		{header: "Basic abc", token: "abc"},
		{header: "Token abc", token: "abc"},
		{header: "Bearer abc extra", token: "abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()

			stub := &stubAuthenticator{err: tokens.ErrTokenMalformed}
			rec, called := serve(t, stub, tt.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Invalid or expired token", message(t, rec))
			assert.Equal(t, tt.token, stub.got)
		})
	}
}

func TestRequireAuth_UserMissing(t *testing.T) {
	t.Parallel()

	rec, called := serve(t, &stubAuthenticator{err: service.ErrNotFound}, "Bearer tok")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", message(t, rec))
}

func TestRequireAuth_StorageError(t *testing.T) {
	t.Parallel()

	rec, called := serve(t, &stubAuthenticator{err: errors.New("db down")}, "Bearer tok")
	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuth_UserFound(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "alice"}
	rec, called := serve(t, &stubAuthenticator{user: user}, "bearer tok")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}
