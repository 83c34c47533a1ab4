package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"embedding_admin/internal/config"
	"embedding_admin/internal/models"
)

// AdminAuthType identifies how an admin authenticated
type AdminAuthType string

const (
	// AdminAuthTypeUser is an email/password login
	AdminAuthTypeUser AdminAuthType = "user"
)

const defaultTokenTTL = 8 * time.Hour

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned for disabled admin users
	ErrAccountDisabled = errors.New("account disabled")

	// ErrInvalidToken is returned for tokens that fail validation
	ErrInvalidToken = errors.New("invalid token")
)

// AdminClaims are the JWT claims carried by admin tokens
type AdminClaims struct {
	AdminID  string        `json:"admin_id"`
	AuthType AdminAuthType `json:"auth_type"`
	Roles    []string      `json:"roles"`
	Email    string        `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AdminStore is the subset of admin user storage the login flow needs
type AdminStore interface {
	GetAdminUserByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateAdminUserLastLogin(ctx context.Context, id uuid.UUID) error
}

func tokenTTL(cfg *config.Config) time.Duration {
	if cfg.JWTTTL > 0 {
		return cfg.JWTTTL
	}
	return defaultTokenTTL
}

// GenerateJWTWithClaims signs claims with the configured secret and returns
// the token and its expiry as a unix timestamp
func GenerateJWTWithClaims(claims *AdminClaims, cfg *config.Config) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(tokenTTL(cfg))

	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	if claims.Subject == "" {
		claims.Subject = claims.AdminID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.JWTSecret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt.Unix(), nil
}

// ValidateAdminJWT verifies signature and expiry and returns the claims
func ValidateAdminJWT(tokenString string, cfg *config.Config) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.JWTSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.AdminID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateAdminJWTWithPassword checks an email/password pair and issues a token
func GenerateAdminJWTWithPassword(ctx context.Context, email, password string, store AdminStore, cfg *config.Config) (string, int64, error) {
	user, err := store.GetAdminUserByEmail(ctx, email)
	if err != nil {
		return "", 0, ErrInvalidCredentials
	}

	valid, err := VerifyPasswordArgon2(password, user.PasswordHash)
	if err != nil || !valid {
		return "", 0, ErrInvalidCredentials
	}

	if !user.IsValid() {
		return "", 0, ErrAccountDisabled
	}

	claims := &AdminClaims{
		AdminID:  user.ID.String(),
		AuthType: AdminAuthTypeUser,
		Roles:    []string(user.Roles),
		Email:    user.Email,
	}

	token, exp, err := GenerateJWTWithClaims(claims, cfg)
	if err != nil {
		return "", 0, err
	}

	// A failed timestamp update does not block the login
	_ = store.UpdateAdminUserLastLogin(ctx, user.ID)

	return token, exp, nil
}
