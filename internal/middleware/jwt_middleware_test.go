package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedding_admin/internal/auth"
	"embedding_admin/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: []byte("middleware-test-secret"), JWTTTL: time.Hour}
}

func tokenFor(t *testing.T, cfg *config.Config, roles ...string) string {
	t.Helper()
	token, _, err := auth.GenerateJWTWithClaims(&auth.AdminClaims{
		AdminID:  "admin-42",
		AuthType: auth.AdminAuthTypeUser,
		Roles:    roles,
	}, cfg)
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/embeddings/cloud", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAdminJWTMiddleware(t *testing.T) {
	cfg := testConfig()

	var gotID string
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetAdminID(r.Context())
		gotAdmin = HasRole(r.Context(), "admin")
		claims, ok := GetAdminClaims(r.Context())
		if ok && claims.AdminID == gotID {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	})

	viewerOnly := AdminJWTMiddleware(cfg, auth.RoleViewer)(next)
	adminOnly := AdminJWTMiddleware(cfg, auth.RoleAdmin)(next)

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(viewerOnly, "").Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(viewerOnly, "Bearer nope").Code)
	})

	t.Run("viewer reads", func(t *testing.T) {
		w := serve(viewerOnly, "Bearer "+tokenFor(t, cfg, "viewer"))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "admin-42", gotID)
		assert.False(t, gotAdmin)
	})

	t.Run("admin reads", func(t *testing.T) {
		w := serve(viewerOnly, "Bearer "+tokenFor(t, cfg, "admin"))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, gotAdmin)
	})

	t.Run("viewer cannot write", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(adminOnly, "Bearer "+tokenFor(t, cfg, "viewer")).Code)
	})

	t.Run("raw token without prefix", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(adminOnly, tokenFor(t, cfg, "admin")).Code)
	})
}
