package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/shelfsight/backend/internal/application/catalog"
	detectionapp "github.com/shelfsight/backend/internal/application/detection"
	identityapp "github.com/shelfsight/backend/internal/application/identity"
	notificationapp "github.com/shelfsight/backend/internal/application/notification"
	quotaapp "github.com/shelfsight/backend/internal/application/quota"
	"github.com/shelfsight/backend/internal/domain/identity"
	"github.com/shelfsight/backend/internal/domain/notification"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/infrastructure/cache"
	"github.com/shelfsight/backend/internal/infrastructure/config"
	"github.com/shelfsight/backend/internal/infrastructure/event"
	"github.com/shelfsight/backend/internal/infrastructure/logger"
	"github.com/shelfsight/backend/internal/infrastructure/persistence"
	"github.com/shelfsight/backend/internal/infrastructure/provider"
	"github.com/shelfsight/backend/internal/infrastructure/realtime"
	"github.com/shelfsight/backend/internal/interfaces/http/handler"
	"github.com/shelfsight/backend/internal/interfaces/http/middleware"
	"github.com/shelfsight/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShelfSight Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Idempotency store: Redis shared across instances, with an
	// in-process fallback when Redis is unreachable
	idemCfg := shared.DefaultIdempotencyConfig()
	idemCfg.Enabled = cfg.Usage.IdempotencyEnabled
	if cfg.Usage.IdempotencyTTL > 0 {
		idemCfg.TTL = cfg.Usage.IdempotencyTTL
	}

	var idemStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, idempotency keys are per-instance", zap.Error(err))
		idemStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idemStore = redisStore
		log.Info("Redis idempotency store connected")
	}

	// Notification broker: Redis pub/sub fans out to every instance,
	// the in-memory broker only reaches subscribers in this process
	var broker notification.Broker
	redisBroker, err := realtime.NewRedisBroker(
		cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB,
		realtime.WithBrokerLogger(log),
	)
	if err != nil {
		log.Warn("Redis unavailable, notifications fan out in-process only", zap.Error(err))
		broker = realtime.NewInMemoryBroker(log)
	} else {
		go func() {
			if err := redisBroker.Run(rootCtx); err != nil {
				log.Error("Notification broker stopped", zap.Error(err))
			}
		}()
		defer func() {
			if err := redisBroker.Close(); err != nil {
				log.Error("Error closing notification broker", zap.Error(err))
			}
		}()
		broker = redisBroker
		log.Info("Redis notification broker connected")
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	skuRepo := persistence.NewGormSKURepository(db.DB)
	resultRepo := persistence.NewGormDetectionResultRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	usageLedger := persistence.NewGormUsageLedger(db.DB,
		persistence.WithLedgerIdempotencyStore(idemStore, idemCfg),
		persistence.WithLedgerLogger(log),
	)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	quotaService := quotaapp.NewQuotaService(tenantRepo, skuRepo, usageLedger, log)
	tenantService := identityapp.NewTenantService(tenantRepo, eventBus, log)
	skuService := catalogapp.NewSKUService(skuRepo, quotaService, eventBus, log)
	dispatcher := notificationapp.NewDispatcher(notificationRepo, broker, idemStore, idemCfg, log)

	detectionProvider := provider.NewHTTPProvider(cfg.Detection)
	detectionService := detectionapp.NewDetectionService(
		quotaService,
		skuRepo,
		resultRepo,
		usageLedger,
		detectionProvider,
		eventBus,
		dispatcher,
		log,
		detectionapp.Config{
			ConfidenceThreshold: cfg.Detection.ConfidenceThreshold,
			ProviderTimeout:     cfg.Detection.ProviderTimeout,
		},
	)

	// Register event handlers for cross-context integration.
	// SKU training completion -> training_complete notification. The
	// idempotent wrapper drops redelivered events before the handler runs.
	trainingCompletedHandler := catalogapp.NewTrainingCompletedHandler(dispatcher, log)
	eventBus.Subscribe(event.NewIdempotentHandler(trainingCompletedHandler, idemStore, log))

	log.Info("Event handlers registered",
		zap.Strings("training_completed_events", trainingCompletedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	handlers := router.Handlers{
		System:       handler.NewSystemHandler(db.DB),
		Tenant:       handler.NewTenantHandler(tenantService, quotaService),
		Detection:    handler.NewDetectionHandler(detectionService),
		Quota:        handler.NewQuotaHandler(quotaService),
		SKU:          handler.NewSKUHandler(skuService),
		Notification: handler.NewNotificationHandler(dispatcher, handler.WithNotificationLogger(log)),
	}

	// Setup gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	routerCfg := router.DefaultConfig()
	routerCfg.Logger = log
	routerCfg.CORS = corsCfg
	routerCfg.TenantValidator = &tenantValidator{tenants: tenantRepo}
	routerCfg.BodyLimitBytes = cfg.HTTP.MaxBodySize
	router.Setup(engine, handlers, routerCfg)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// tenantValidator rejects requests scoped to unknown or deactivated
// tenants before they reach a handler
type tenantValidator struct {
	tenants identity.TenantRepository
}

func (v *tenantValidator) ValidateTenant(tenantID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tenant, err := v.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !tenant.IsActive() {
		return shared.NewDomainError("TENANT_INACTIVE", "Tenant is not active")
	}
	return nil
}
