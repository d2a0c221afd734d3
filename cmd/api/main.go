package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"backoffice_backend/internal/adapters/storage"
	"backoffice_backend/internal/audit"
	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/commerce"
	"backoffice_backend/internal/customers"
	"backoffice_backend/internal/customers/resolver"
	"backoffice_backend/internal/events"
	apphttp "backoffice_backend/internal/http"
	"backoffice_backend/internal/http/router"
	"backoffice_backend/internal/orders"
	"backoffice_backend/internal/schools"
	"backoffice_backend/internal/schools/importer"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/db"
	"backoffice_backend/platform/logger"
	"backoffice_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// CMS client for the canonical store
	cmsClient := cms.NewClient(cfg, log)
	if err := withRetry(ctx, log, "cms connection", 5, 2*time.Second, func() error {
		return cmsClient.Ping(ctx)
	}); err != nil {
		log.Error("failed to reach the CMS", "error", err)
		panic("failed to reach the CMS: " + err.Error())
	}
	log.Info("cms connection established", "url", cfg.GetCMSBaseURL())

	// Storefront site registry
	registry := commerce.NewRegistry(cfg, log)
	log.Info("storefront sites configured", "sites", registry.Names())

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Resolver cache (Redis); nil disables caching
	cache, closeCache := initResolverCache(cfg, log)
	if closeCache != nil {
		defer closeCache()
	}

	// Import archive (MinIO); nil disables archiving
	archive := initImportArchive(ctx, cfg, log)

	// Audit store (Postgres); nil disables the sync-run trail
	pool := initAuditStore(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	res := resolver.New(cmsClient, cache, log)

	customersModule := customers.NewModule(cmsClient, res, registry, eventBus, val, log)
	ordersModule := orders.NewModule(cmsClient, res, registry, eventBus, val, log)
	schoolsModule := schools.NewModule(cmsClient, archive, cfg, eventBus, val, log)

	modules := []apphttp.Module{
		customersModule,
		ordersModule,
		schoolsModule,
	}

	var health apphttp.HealthChecker
	if pool != nil {
		modules = append(modules, audit.NewModule(pool, eventBus, log))
		health = db.NewPoolAdapter(pool)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initResolverCache(cfg *config.Config, log *logger.Logger) (resolver.Cache, func()) {
	if !cfg.IsResolverCacheEnabled() {
		log.Warn("REDIS_URL not configured; resolver cache disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; resolver cache disabled", "error", err)
		return nil, nil
	}

	client := redis.NewClient(opts)
	log.Info("resolver cache enabled", "ttl", cfg.GetResolverCacheTTL())
	return resolver.NewRedisCache(client, cfg.GetResolverCacheTTL(), log), func() {
		_ = client.Close()
	}
}

func initImportArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) importer.Archiver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; import archiving disabled")
		return nil
	}

	archive, err := storage.NewArchive(cfg)
	if err != nil {
		log.Error("failed to initialize import archive; archiving disabled", "error", err)
		return nil
	}
	if err := withRetry(ctx, log, "ensure import-archive bucket", 5, 2*time.Second, func() error {
		return archive.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure import-archive bucket; archiving disabled", "error", err)
		return nil
	}

	log.Info("import archive initialized", "bucket", cfg.GetMinioBucketImportArchive())
	return archive
}

func initAuditStore(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if !cfg.IsAuditEnabled() {
		log.Warn("DATABASE_URL not configured; sync-run trail disabled")
		return nil
	}

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")

	return pool
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}
