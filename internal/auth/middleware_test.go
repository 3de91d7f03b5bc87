package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-backend/internal/model"
)

func okHandler(t *testing.T, wantUserID uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUserID, claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	m := newTestManager(t, time.Hour)
	mw := NewMiddleware(m)
	userID := uuid.New()

	token, err := m.Generate(userID, model.RolePlayer)
	require.NoError(t, err)

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Authenticate(okHandler(t, userID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		rec := httptest.NewRecorder()

		mw.Authenticate(okHandler(t, userID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "unauthorized")
	})

	t.Run("non-bearer header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		mw.Authenticate(okHandler(t, userID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		mw.Authenticate(okHandler(t, userID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	m := newTestManager(t, time.Hour)
	mw := NewMiddleware(m)

	adminID := uuid.New()
	adminToken, err := m.Generate(adminID, model.RoleAdmin)
	require.NoError(t, err)
	playerToken, err := m.Generate(uuid.New(), model.RolePlayer)
	require.NoError(t, err)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/screenshots/pending", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := httptest.NewRecorder()

		mw.RequireAdmin(okHandler(t, adminID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("player forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/screenshots/pending", nil)
		req.Header.Set("Authorization", "Bearer "+playerToken)
		rec := httptest.NewRecorder()

		mw.RequireAdmin(okHandler(t, adminID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("no token unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/screenshots/pending", nil)
		rec := httptest.NewRecorder()

		mw.RequireAdmin(okHandler(t, adminID)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
