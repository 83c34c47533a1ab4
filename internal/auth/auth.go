package auth

import (
	"errors"
	"net/http"
	"strings"

	"embedding_admin/internal/config"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/utils"
)

// LoginRequest is the body of POST /admin/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries an admin JWT
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	Roles     []string `json:"roles"`
}

// LoginHandler exchanges admin credentials for a JWT
func LoginHandler(store AdminStore, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		token, exp, err := GenerateAdminJWTWithPassword(r.Context(), req.Email, req.Password, store, cfg)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidCredentials):
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			case errors.Is(err, ErrAccountDisabled):
				utils.RespondWithError(w, http.StatusForbidden, "Account disabled")
			default:
				logging.Errorf("admin login for %s failed: %v", req.Email, err)
				utils.RespondWithError(w, http.StatusInternalServerError, "Failed to issue token")
			}
			return
		}

		claims, err := ValidateAdminJWT(token, cfg)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, LoginResponse{
			Token:     token,
			ExpiresAt: exp,
			Roles:     claims.Roles,
		})
	}
}
