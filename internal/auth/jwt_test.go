package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"embedding_admin/internal/config"
	"embedding_admin/internal/models"
	"embedding_admin/internal/storage"
)

// MockAdminStore for testing
type MockAdminStore struct {
	users      map[string]*models.AdminUser
	lastLogins []uuid.UUID
}

func NewMockAdminStore() *MockAdminStore {
	return &MockAdminStore{users: make(map[string]*models.AdminUser)}
}

func (m *MockAdminStore) GetAdminUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if user, ok := m.users[email]; ok {
		return user, nil
	}
	return nil, storage.ErrAdminUserNotFound
}

func (m *MockAdminStore) UpdateAdminUserLastLogin(ctx context.Context, id uuid.UUID) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

func getTestConfig() *config.Config {
	return &config.Config{
		JWTSecret: []byte("test-secret-key-for-testing"),
		JWTTTL:    time.Hour,
	}
}

func addTestUser(t *testing.T, store *MockAdminStore, email, password string, roles ...string) *models.AdminUser {
	t.Helper()

	hash, err := HashPasswordArgon2(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Roles:        pq.StringArray(roles),
		Enabled:      true,
	}
	store.users[email] = user
	return user
}

func TestHashPasswordArgon2(t *testing.T) {
	hash, err := HashPasswordArgon2("test-password-123")
	if err != nil {
		t.Fatalf("HashPasswordArgon2() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("HashPasswordArgon2() hash format invalid: %s", hash)
	}

	other, _ := HashPasswordArgon2("test-password-123")
	if hash == other {
		t.Error("HashPasswordArgon2() should salt each hash")
	}
}

func TestVerifyPasswordArgon2(t *testing.T) {
	password := "test-password-123"
	hash, err := HashPasswordArgon2(password)
	if err != nil {
		t.Fatalf("HashPasswordArgon2() error = %v", err)
	}

	t.Run("valid password", func(t *testing.T) {
		valid, err := VerifyPasswordArgon2(password, hash)
		if err != nil {
			t.Fatalf("VerifyPasswordArgon2() error = %v", err)
		}
		if !valid {
			t.Error("VerifyPasswordArgon2() = false, want true")
		}
	})

	t.Run("invalid password", func(t *testing.T) {
		valid, err := VerifyPasswordArgon2("wrong-password", hash)
		if err != nil {
			t.Fatalf("VerifyPasswordArgon2() error = %v", err)
		}
		if valid {
			t.Error("VerifyPasswordArgon2() = true, want false")
		}
	})

	t.Run("invalid hash format", func(t *testing.T) {
		for _, bad := range []string{"invalid-hash", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$a$b"} {
			if _, err := VerifyPasswordArgon2(password, bad); err == nil {
				t.Errorf("VerifyPasswordArgon2(%q) error = nil, want error", bad)
			}
		}
	})
}

func TestGenerateAdminJWTWithPassword(t *testing.T) {
	cfg := getTestConfig()
	ctx := context.Background()
	store := NewMockAdminStore()

	password := "admin-password-123"
	user := addTestUser(t, store, "admin@example.com", password, "admin", "viewer")

	t.Run("valid credentials", func(t *testing.T) {
		token, expTime, err := GenerateAdminJWTWithPassword(ctx, user.Email, password, store, cfg)
		if err != nil {
			t.Fatalf("GenerateAdminJWTWithPassword() error = %v", err)
		}

		if expTime <= time.Now().Unix() {
			t.Error("GenerateAdminJWTWithPassword() expiration time is in the past")
		}

		claims, err := ValidateAdminJWT(token, cfg)
		if err != nil {
			t.Fatalf("ValidateAdminJWT() error = %v", err)
		}

		if claims.AuthType != AdminAuthTypeUser {
			t.Errorf("claims.AuthType = %v, want %v", claims.AuthType, AdminAuthTypeUser)
		}
		if claims.AdminID != user.ID.String() {
			t.Errorf("claims.AdminID = %v, want %v", claims.AdminID, user.ID)
		}
		if claims.Email != user.Email {
			t.Errorf("claims.Email = %v, want %v", claims.Email, user.Email)
		}
		if len(claims.Roles) != 2 {
			t.Errorf("len(claims.Roles) = %v, want 2", len(claims.Roles))
		}
		if len(store.lastLogins) != 1 || store.lastLogins[0] != user.ID {
			t.Errorf("last login not recorded: %v", store.lastLogins)
		}
	})

	t.Run("invalid password", func(t *testing.T) {
		_, _, err := GenerateAdminJWTWithPassword(ctx, user.Email, "wrong-password", store, cfg)
		if err != ErrInvalidCredentials {
			t.Errorf("GenerateAdminJWTWithPassword() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := GenerateAdminJWTWithPassword(ctx, "nobody@example.com", password, store, cfg)
		if err != ErrInvalidCredentials {
			t.Errorf("GenerateAdminJWTWithPassword() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("disabled user", func(t *testing.T) {
		disabledUser := *user
		disabledUser.Enabled = false
		store.users[disabledUser.Email] = &disabledUser
		defer func() { store.users[user.Email] = user }()

		_, _, err := GenerateAdminJWTWithPassword(ctx, disabledUser.Email, password, store, cfg)
		if err != ErrAccountDisabled {
			t.Errorf("GenerateAdminJWTWithPassword() error = %v, want %v", err, ErrAccountDisabled)
		}
	})
}

func TestValidateAdminJWT(t *testing.T) {
	cfg := getTestConfig()

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := GenerateJWTWithClaims(&AdminClaims{AdminID: "a", Roles: []string{"admin"}}, cfg)
		if err != nil {
			t.Fatalf("GenerateJWTWithClaims() error = %v", err)
		}

		other := &config.Config{JWTSecret: []byte("another-secret")}
		if _, err := ValidateAdminJWT(token, other); err == nil {
			t.Error("ValidateAdminJWT() error = nil for wrong secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		claims := &AdminClaims{
			AdminID: "a",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.JWTSecret)
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}

		if _, err := ValidateAdminJWT(token, cfg); err == nil {
			t.Error("ValidateAdminJWT() error = nil for expired token")
		}
	})

	t.Run("missing admin id", func(t *testing.T) {
		token, _, _ := GenerateJWTWithClaims(&AdminClaims{Roles: []string{"admin"}}, cfg)
		if _, err := ValidateAdminJWT(token, cfg); err == nil {
			t.Error("ValidateAdminJWT() error = nil for token without admin id")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ValidateAdminJWT("not-a-jwt", cfg); err == nil {
			t.Error("ValidateAdminJWT() error = nil for garbage")
		}
	})
}

func TestPermits(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required []Role
		want     bool
	}{
		{"admin reads", []string{"admin"}, []Role{RoleViewer}, true},
		{"admin writes", []string{"admin"}, []Role{RoleAdmin}, true},
		{"viewer reads", []string{"viewer"}, []Role{RoleViewer}, true},
		{"viewer writes", []string{"viewer"}, []Role{RoleAdmin}, false},
		{"no roles", nil, []Role{RoleViewer}, false},
		{"nothing required", nil, nil, true},
		{"unknown role", []string{"editor"}, []Role{RoleViewer}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Permits(tt.granted, tt.required...); got != tt.want {
				t.Errorf("Permits(%v, %v) = %v, want %v", tt.granted, tt.required, got, tt.want)
			}
		})
	}
}
