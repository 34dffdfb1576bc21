package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shelfsight/backend/internal/infrastructure/logger"
	"github.com/shelfsight/backend/internal/interfaces/http/handler"
	"github.com/shelfsight/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the API serves
type Handlers struct {
	System       *handler.SystemHandler
	Tenant       *handler.TenantHandler
	Detection    *handler.DetectionHandler
	Quota        *handler.QuotaHandler
	SKU          *handler.SKUHandler
	Notification *handler.NotificationHandler
}

// Config holds router assembly settings
type Config struct {
	Logger          *zap.Logger
	CORS            middleware.CORSConfig
	TenantValidator middleware.TenantValidator
	BodyLimitBytes  int64
	RateLimitPerMin int
}

// DefaultConfig returns router defaults. CORS origins stay empty until
// explicitly configured.
func DefaultConfig() Config {
	return Config{
		Logger:          zap.NewNop(),
		CORS:            middleware.DefaultCORSConfig(),
		BodyLimitBytes:  10 << 20,
		RateLimitPerMin: 300,
	}
}

// Setup assembles the full engine: middleware stack, health probes and
// every API route. Tenant administration stays outside tenant scoping
// so operators can provision tenants before one exists.
func Setup(engine *gin.Engine, handlers Handlers, cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.Secure())
	if cfg.BodyLimitBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.BodyLimitBytes))
	}
	if cfg.RateLimitPerMin > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)))
	}

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Validator = cfg.TenantValidator
	tenantCfg.Logger = cfg.Logger
	engine.Use(middleware.TenantWithConfig(tenantCfg))
	engine.Use(middleware.User())

	engine.GET("/health", handlers.System.Health)
	engine.GET("/ready", handlers.System.Ready)

	r := NewRouter(engine)
	r.Register(&apiRoutes{handlers: handlers})
	r.Setup()
	return r
}

// apiRoutes registers every versioned API route
type apiRoutes struct {
	handlers Handlers
}

func (a *apiRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/info", a.handlers.System.GetSystemInfo)

	tenants := rg.Group("/tenants")
	{
		tenants.POST("", a.handlers.Tenant.Create)
		tenants.GET("/:id", a.handlers.Tenant.GetByID)
		tenants.PUT("/:id/limits", a.handlers.Tenant.UpdateLimits)
		tenants.PUT("/:id/status", a.handlers.Tenant.ChangeStatus)
		tenants.GET("/:id/quota", a.handlers.Tenant.GetQuota)
	}

	detections := rg.Group("/detections")
	{
		detections.POST("", a.handlers.Detection.Process)
		detections.GET("", a.handlers.Detection.List)
		detections.GET("/:id", a.handlers.Detection.GetByID)
	}

	rg.GET("/quota", a.handlers.Quota.Get)

	skus := rg.Group("/skus")
	{
		skus.POST("", a.handlers.SKU.Create)
		skus.GET("", a.handlers.SKU.List)
		skus.GET("/:id", a.handlers.SKU.GetByID)
		skus.PATCH("/:id", a.handlers.SKU.Rename)
		skus.POST("/:id/training", a.handlers.SKU.Transition)
	}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", a.handlers.Notification.List)
		notifications.GET("/unread-count", a.handlers.Notification.UnreadCount)
		notifications.GET("/stream", a.handlers.Notification.Stream)
		notifications.POST("/:id/read", a.handlers.Notification.MarkRead)
		notifications.POST("/read-all", a.handlers.Notification.MarkAllRead)
	}
}
