package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postLogin(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/auth/login", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	cfg := getTestConfig()
	store := NewMockAdminStore()
	addTestUser(t, store, "ops@example.com", "hunter22", "viewer")
	h := LoginHandler(store, cfg)

	t.Run("success", func(t *testing.T) {
		w := postLogin(t, h, `{"email":"ops@example.com","password":"hunter22"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, []string{"viewer"}, resp.Roles)

		claims, err := ValidateAdminJWT(resp.Token, cfg)
		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postLogin(t, h, `{"email":"ops@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postLogin(t, h, `{"email":"ops@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postLogin(t, h, `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
