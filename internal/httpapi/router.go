package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"embedding_admin/internal/audit"
	"embedding_admin/internal/auth"
	"embedding_admin/internal/config"
	"embedding_admin/internal/embedding"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/middleware"
	"embedding_admin/internal/queue"
	"embedding_admin/internal/session"
	"embedding_admin/internal/storage"
	"embedding_admin/internal/utils"
)

// devEncryptionKey is used when ENCRYPTION_KEY is unset. Never use it in production.
const devEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// HealthCheck reports whether a backing service is usable
type HealthCheck func(ctx context.Context) error

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Catalog     embedding.Catalog
	Providers   ProviderStore
	Models      ModelStore
	AdminStore  auth.AdminStore
	Sessions    session.Store
	ProxyStates *storage.LRUCache[*embedding.ProxyState]
	Audit       *audit.Publisher
	AuditWorker *audit.Worker
	Health      map[string]HealthCheck
	DBStats     func() storage.DBStats

	db    *storage.DB
	redis *storage.RedisClient

	janitorStop chan struct{}
	janitorDone chan struct{}
}

// NewRouter creates an HTTP router with all dependencies wired up
func NewRouter(cfg *config.Config) (*http.ServeMux, *Dependencies, error) {
	ctx := context.Background()

	db, err := storage.NewDB(storage.DBConfig{
		DSN:              cfg.Database.URL,
		MaxOpenConns:     cfg.Database.MaxOpenConns,
		MaxIdleConns:     cfg.Database.MaxIdleConns,
		ConnMaxLifetime:  cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:  cfg.Database.ConnMaxIdleTime,
		ProviderCacheTTL: cfg.Cache.ProviderDetailsTTL,
		SettingsCacheTTL: cfg.Cache.CurrentModelTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	deps := &Dependencies{
		Catalog:     embedding.DefaultCatalog(),
		ProxyStates: storage.NewLRUCache[*embedding.ProxyState](cfg.Cache.ProxyStateSize, cfg.Cache.ProxyStateTTL),
		Health:      map[string]HealthCheck{"database": db.Health},
		DBStats:     db.GetStats,
		db:          db,
	}

	if cfg.UsesRedis() {
		redisCfg := storage.DefaultRedisConfig()
		redisCfg.Address = cfg.Redis.Address
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisClient, err := storage.NewRedisClient(ctx, redisCfg)
		if err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		deps.redis = redisClient
		deps.Health["redis"] = redisClient.Health
	}

	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		logging.Warningf("ENCRYPTION_KEY not set, using the development key")
		encryptionKey = devEncryptionKey
	}
	encryption, err := storage.NewEncryptionFromHex(encryptionKey)
	if err != nil {
		deps.Close()
		return nil, nil, fmt.Errorf("failed to initialize encryption: %w", err)
	}

	deps.Providers = storage.NewEmbeddingProviderRepository(db, encryption)
	deps.Models = storage.NewEmbeddingModelRepository(db)
	deps.AdminStore = NewAdminStoreAdapter(storage.NewAdminUserRepository(db))

	if cfg.Session.Store == "redis" {
		deps.Sessions = session.NewRedisStore(deps.redis.Client(), cfg.Session.KeyPrefix, cfg.Session.TTL)
	} else {
		deps.Sessions = session.NewMemoryStore()
	}

	if cfg.Audit.Enabled {
		if err := deps.startAudit(ctx, cfg); err != nil {
			deps.Close()
			return nil, nil, err
		}
	}

	deps.startJanitor(cfg.Cache.CleanupInterval)

	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	return mux, deps, nil
}

// startJanitor sweeps expired cache entries every interval until Close
func (d *Dependencies) startJanitor(interval time.Duration) {
	if interval <= 0 || d.janitorStop != nil {
		return
	}
	d.janitorStop = make(chan struct{})
	d.janitorDone = make(chan struct{})

	go func() {
		defer close(d.janitorDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				d.sweepCaches()
			case <-d.janitorStop:
				return
			}
		}
	}()
}

func (d *Dependencies) sweepCaches() int {
	removed := 0
	if d.db != nil {
		removed += d.db.CleanupExpiredCacheEntries()
	}
	if d.ProxyStates != nil {
		removed += d.ProxyStates.CleanupExpired()
	}
	if removed > 0 {
		logging.Debugf("Removed %d expired cache entries", removed)
	}
	return removed
}

// startAudit wires the audit queue, its writer and the worker draining it
func (d *Dependencies) startAudit(ctx context.Context, cfg *config.Config) error {
	queueCfg := queue.DefaultConfig("audit")
	queueCfg.Capacity = cfg.Audit.BufferSize
	queueCfg.BatchSize = cfg.Audit.BatchSize
	queueCfg.BatchTimeout = cfg.Audit.BatchTimeout
	queueCfg.MaxRetries = cfg.Audit.MaxRetries

	var (
		q   queue.Queue[audit.Event]
		dlq queue.DeadLetterQueue[audit.Event]
		err error
	)
	if cfg.Audit.Queue == "redis" {
		q, err = queue.NewRedisQueue[audit.Event](d.redis.Client(), queueCfg)
		if err != nil {
			return fmt.Errorf("failed to create audit queue: %w", err)
		}
		dlq, err = queue.NewRedisDeadLetterQueue[audit.Event](d.redis.Client(), queueCfg)
		if err != nil {
			return fmt.Errorf("failed to create audit DLQ: %w", err)
		}
	} else {
		q = queue.NewMemoryQueue[audit.Event](queueCfg)
		dlq = queue.NewMemoryDeadLetterQueue[audit.Event]()
	}

	var writer audit.Writer
	if cfg.Audit.S3Bucket != "" {
		writer, err = audit.NewS3Writer(ctx, audit.S3Config{
			Bucket:    cfg.Audit.S3Bucket,
			Region:    cfg.Audit.S3Region,
			Prefix:    cfg.Audit.S3Prefix,
			PodName:   cfg.Audit.PodName,
			Endpoint:  cfg.Audit.S3Endpoint,
			AccessKey: cfg.Audit.S3AccessKey,
			SecretKey: cfg.Audit.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("failed to create audit S3 writer: %w", err)
		}
		logging.Infof("Audit events go to s3://%s/%s", cfg.Audit.S3Bucket, cfg.Audit.S3Prefix)
	} else {
		writer = audit.NewLogWriter(nil)
		logging.Infof("Audit events go to the log (AUDIT_S3_BUCKET not set)")
	}

	d.Audit = audit.NewPublisher(q)
	d.AuditWorker = audit.NewWorker(q, dlq, writer, queueCfg)
	d.AuditWorker.Start(context.Background())
	return nil
}

// Close stops the janitor and the audit worker and releases connections
func (d *Dependencies) Close() error {
	if d.janitorStop != nil {
		close(d.janitorStop)
		<-d.janitorDone
		d.janitorStop = nil
	}
	if d.AuditWorker != nil {
		if err := d.AuditWorker.Stop(); err != nil {
			logging.Errorf("failed to stop audit worker: %v", err)
		}
		d.AuditWorker = nil
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logging.Errorf("failed to close Redis: %v", err)
		}
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// NewMux builds the router on already constructed dependencies
func NewMux(deps *Dependencies, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)
	return mux
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies, cfg *config.Config) {
	// Health check endpoint - public
	mux.HandleFunc("GET /health", deps.handleHealth)

	// Admin authentication endpoint - public
	mux.HandleFunc("POST /admin/auth/login", auth.LoginHandler(deps.AdminStore, cfg))

	viewer := middleware.AdminJWTMiddleware(cfg, auth.RoleViewer)
	admin := middleware.AdminJWTMiddleware(cfg, auth.RoleAdmin)

	h := NewEmbeddingsHandler(deps.Catalog, deps.Providers, deps.Models, deps.Sessions, deps.ProxyStates, deps.Audit)
	const base = "/admin/embeddings/cloud"

	mux.Handle("GET "+base, viewer(http.HandlerFunc(h.View)))
	mux.Handle("GET "+base+"/state", viewer(http.HandlerFunc(h.State)))
	mux.Handle("DELETE "+base+"/state", admin(http.HandlerFunc(h.ResetState)))
	mux.Handle("GET "+base+"/providers/{type}", viewer(http.HandlerFunc(h.GetProvider)))
	mux.Handle("POST "+base+"/providers/{type}/click", admin(http.HandlerFunc(h.ClickProvider)))
	mux.Handle("PUT "+base+"/providers/{type}", admin(http.HandlerFunc(h.SetupProvider)))
	mux.Handle("DELETE "+base+"/providers/{type}", admin(http.HandlerFunc(h.RemoveProvider)))
	mux.Handle("POST "+base+"/models", admin(http.HandlerFunc(h.RegisterModel)))
	mux.Handle("DELETE "+base+"/models/{id}", admin(http.HandlerFunc(h.DeleteModel)))
	mux.Handle("POST "+base+"/models/click", admin(http.HandlerFunc(h.ClickModel)))
	mux.Handle("POST "+base+"/models/confirm", admin(http.HandlerFunc(h.ConfirmModel)))
	mux.Handle("POST "+base+"/dialogs/cancel", admin(http.HandlerFunc(h.CancelDialogs)))

	var source DeadLetterSource
	if deps.AuditWorker != nil {
		source = deps.AuditWorker
	}
	ah := NewAuditHandler(source)
	mux.Handle("GET /admin/audit/dead-letters", admin(http.HandlerFunc(ah.ListDeadLetters)))
	mux.Handle("POST /admin/audit/dead-letters/{id}/retry", admin(http.HandlerFunc(ah.RetryDeadLetter)))

	mux.Handle("GET /admin/stats", admin(http.HandlerFunc(deps.handleStats)))
}

// StatsResponse reports pool and cache usage
type StatsResponse struct {
	Database   *storage.DBStats   `json:"database,omitempty"`
	ProxyState storage.CacheStats `json:"proxy_state_cache"`
}

func (d *Dependencies) handleStats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	if d.DBStats != nil {
		stats := d.DBStats()
		resp.Database = &stats
	}
	if d.ProxyStates != nil {
		resp.ProxyState = d.ProxyStates.GetStats()
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// HealthResponse reports each backing service
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (d *Dependencies) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Services: make(map[string]string, len(d.Health))}
	code := http.StatusOK
	for name, check := range d.Health {
		if err := check(ctx); err != nil {
			logging.Warningf("health check %s failed: %v", name, err)
			resp.Services[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "ok"
	}

	utils.RespondWithJSON(w, code, resp)
}
