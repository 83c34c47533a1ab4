package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"embedding_admin/internal/auth"
	"embedding_admin/internal/config"
	"embedding_admin/internal/models"
	"embedding_admin/internal/storage"
)

func main() {
	fmt.Println("Embedding Admin - Bootstrap Admin Initialization")
	fmt.Println(strings.Repeat("=", 48))

	// Load configuration (primarily for database connection)
	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load configuration: %v", err)
	}

	email := os.Getenv("ADMIN_BOOTSTRAP_EMAIL")
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")
	if email == "" || password == "" {
		fail("ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set")
	}
	if !isValidEmail(email) {
		fail("Invalid email format: %s", email)
	}
	if len(password) < 8 {
		fail("Password must be at least 8 characters long")
	}

	fmt.Println("Connecting to database...")
	dbConfig := storage.DefaultDBConfig()
	dbConfig.DSN = cfg.Database.URL
	dbConfig.MaxOpenConns = 2
	dbConfig.MaxIdleConns = 1

	db, err := storage.NewDB(dbConfig)
	if err != nil {
		fail("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Ensuring schema...")
	if err := db.EnsureSchema(ctx); err != nil {
		fail("Failed to ensure schema: %v", err)
	}

	repo := storage.NewAdminUserRepository(db)

	count, err := repo.Count(ctx)
	if err != nil {
		fail("Failed to check existing users: %v", err)
	}
	if count > 0 {
		fmt.Printf("INFO: Found %d existing admin user(s). Bootstrap not needed.\n", count)
		fmt.Println("Exiting successfully (no action taken)")
		return
	}

	existing, err := repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrAdminUserNotFound) {
		fail("Failed to check for existing user: %v", err)
	}
	if existing != nil {
		fmt.Printf("INFO: Admin user with email %s already exists\n", email)
		return
	}

	fmt.Println("Hashing password using Argon2...")
	passwordHash, err := auth.HashPasswordArgon2(password)
	if err != nil {
		fail("Failed to hash password: %v", err)
	}

	adminUser := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        pq.StringArray{string(auth.RoleAdmin)},
		Enabled:      true,
	}
	if err := repo.Create(ctx, adminUser); err != nil {
		fail("Failed to create admin user: %v", err)
	}

	fmt.Println()
	fmt.Println("SUCCESS: Bootstrap admin user created")
	fmt.Printf("Email: %s\n", adminUser.Email)
	fmt.Printf("ID: %s\n", adminUser.ID)
	fmt.Printf("Roles: %v\n", adminUser.Roles)
	fmt.Printf("Created: %s\n", adminUser.CreatedAt.Format(time.RFC3339))
	fmt.Println("\nRemove ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD from your environment.")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

// isValidEmail requires exactly one @ with text on both sides
func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at == strings.LastIndex(email, "@") && at < len(email)-1
}
