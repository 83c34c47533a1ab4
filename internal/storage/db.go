package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"embedding_admin/internal/embedding"
	"embedding_admin/internal/models"
)

// Cache keys
const (
	providerDetailsKey = "provider_details"
	searchSettingsKey  = "search_settings"
)

// DB wraps the database connection and the read caches in front of it
type DB struct {
	conn *sqlx.DB

	// Provider details are read on every screen render and rarely written
	providerCache *LRUCache[[]embedding.ProviderDetail]
	settingsCache *LRUCache[*models.SearchSettings]
}

// DBConfig holds database configuration
type DBConfig struct {
	// DSN takes precedence over the discrete connection settings
	DSN string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Cache settings
	ProviderCacheTTL time.Duration
	SettingsCacheTTL time.Duration
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() DBConfig {
	return DBConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "embedadmin",
		User:     "postgres",
		SSLMode:  "disable",

		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,

		ProviderCacheTTL: 30 * time.Second,
		SettingsCacheTTL: 30 * time.Second,
	}
}

func (cfg DBConfig) dataSource() string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode,
	)
}

// NewDB connects to Postgres and configures the pool
func NewDB(cfg DBConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.dataSource())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return NewDBWithConn(conn, cfg), nil
}

// NewDBWithConn wraps an existing connection
func NewDBWithConn(conn *sqlx.DB, cfg DBConfig) *DB {
	return &DB{
		conn:          conn,
		providerCache: NewLRUCache[[]embedding.ProviderDetail](1, cfg.ProviderCacheTTL),
		settingsCache: NewLRUCache[*models.SearchSettings](1, cfg.SettingsCacheTTL),
	}
}

// Close closes the database connection and clears caches
func (db *DB) Close() error {
	db.providerCache.Clear()
	db.settingsCache.Clear()
	return db.conn.Close()
}

// Ping checks if the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Health returns the health status of the database
func (db *DB) Health(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := db.conn.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}

	return nil
}

// DBStats holds pool and cache statistics
type DBStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`

	ProviderCacheStats CacheStats `json:"provider_cache"`
	SettingsCacheStats CacheStats `json:"settings_cache"`
}

// GetStats returns current database and cache statistics
func (db *DB) GetStats() DBStats {
	stats := db.conn.Stats()

	return DBStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,

		ProviderCacheStats: db.providerCache.GetStats(),
		SettingsCacheStats: db.settingsCache.GetStats(),
	}
}

// Conn returns the underlying sqlx connection
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// CleanupExpiredCacheEntries removes expired entries from all caches
func (db *DB) CleanupExpiredCacheEntries() int {
	return db.providerCache.CleanupExpired() + db.settingsCache.CleanupExpired()
}
