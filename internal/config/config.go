package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the embedding admin service.
type Config struct {
	HTTPPort      string
	JWTSecret     []byte
	JWTTTL        time.Duration
	EncryptionKey string // 64 hex characters (AES-256)
	LogLevel      string
	Database      DatabaseConfig
	Cache         CacheConfig
	Redis         RedisConfig
	Session       SessionConfig
	Audit         AuditConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// CacheConfig holds cache settings
type CacheConfig struct {
	ProviderDetailsTTL time.Duration
	CurrentModelTTL    time.Duration
	ProxyStateSize     int           // per-session proxy state entries
	ProxyStateTTL      time.Duration // idle sessions drop their proxy state
	CleanupInterval    time.Duration // expired entry sweep, 0 disables
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig selects where per-session screen state lives
type SessionConfig struct {
	Store     string // "redis" or "memory"
	TTL       time.Duration
	KeyPrefix string
}

// AuditConfig holds configuration for the intent audit trail
type AuditConfig struct {
	Enabled      bool
	Queue        string // "redis" or "memory"
	BufferSize   int    // memory queue capacity
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   int
	S3Bucket     string // empty writes batches to the log instead
	S3Region     string
	S3Prefix     string
	S3Endpoint   string // S3-compatible stores such as MinIO
	S3AccessKey  string
	S3SecretKey  string
	PodName      string
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}

	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg := &Config{
		HTTPPort:      getEnvString("HTTP_PORT", "8080"),
		JWTSecret:     []byte(getEnvString("JWT_SECRET", "supersecretkey")),
		JWTTTL:        getEnvDuration("JWT_TTL", 8*time.Hour),
		EncryptionKey: getEnvString("ENCRYPTION_KEY", ""),
		LogLevel:      strings.ToLower(getEnvString("LOG_LEVEL", "")),
		Database: DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Cache: CacheConfig{
			ProviderDetailsTTL: getEnvDuration("CACHE_PROVIDER_DETAILS_TTL", 30*time.Second),
			CurrentModelTTL:    getEnvDuration("CACHE_CURRENT_MODEL_TTL", 30*time.Second),
			ProxyStateSize:     getEnvInt("CACHE_PROXY_STATE_SIZE", 1000),
			ProxyStateTTL:      getEnvDuration("CACHE_PROXY_STATE_TTL", 30*time.Minute),
			CleanupInterval:    getEnvDuration("CACHE_CLEANUP_INTERVAL", time.Minute),
		},
		Redis: RedisConfig{
			Address:      getEnvString("REDIS_ADDRESS", "localhost:6379"),
			Password:     getEnvString("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Session: SessionConfig{
			Store:     strings.ToLower(getEnvString("SESSION_STORE", "redis")),
			TTL:       getEnvDuration("SESSION_TTL", 24*time.Hour),
			KeyPrefix: getEnvString("SESSION_KEY_PREFIX", "embedadmin:session:"),
		},
		Audit: AuditConfig{
			Enabled:      getEnvBool("AUDIT_ENABLED", true),
			Queue:        strings.ToLower(getEnvString("AUDIT_QUEUE", "memory")),
			BufferSize:   getEnvInt("AUDIT_BUFFER_SIZE", 10000),
			BatchSize:    getEnvInt("AUDIT_BATCH_SIZE", 100),
			BatchTimeout: getEnvDuration("AUDIT_BATCH_TIMEOUT", 5*time.Second),
			MaxRetries:   getEnvInt("AUDIT_MAX_RETRIES", 3),
			S3Bucket:     getEnvString("AUDIT_S3_BUCKET", ""),
			S3Region:     getEnvString("AUDIT_S3_REGION", "us-east-1"),
			S3Prefix:     getEnvString("AUDIT_S3_PREFIX", "audit/"),
			S3Endpoint:   getEnvString("AUDIT_S3_ENDPOINT", ""),
			S3AccessKey:  getEnvString("AUDIT_S3_ACCESS_KEY", ""),
			S3SecretKey:  getEnvString("AUDIT_S3_SECRET_KEY", ""),
			PodName:      getEnvString("POD_NAME", "embedadmin-0"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.EncryptionKey != "" && len(c.EncryptionKey) != 64 {
		return fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters, got %d", len(c.EncryptionKey))
	}
	switch c.Session.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("SESSION_STORE must be redis or memory, got %q", c.Session.Store)
	}
	switch c.Audit.Queue {
	case "redis", "memory":
	default:
		return fmt.Errorf("AUDIT_QUEUE must be redis or memory, got %q", c.Audit.Queue)
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis connection
func (c *Config) UsesRedis() bool {
	return c.Session.Store == "redis" || (c.Audit.Enabled && c.Audit.Queue == "redis")
}
