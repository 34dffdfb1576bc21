package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Context and header keys for request identity
const (
	TenantIDKey     = "tenant_id"
	UserIDKey       = "user_id"
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
)

// TenantValidator checks that a tenant exists and may use the service.
// Plugged in by the router so the middleware package stays free of
// repository dependencies.
type TenantValidator interface {
	ValidateTenant(tenantID uuid.UUID) error
}

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are paths served without tenant context (health, admin)
	SkipPaths []string
	// Required determines if tenant identification is mandatory
	Required bool
	// Validator optionally verifies the tenant against the store
	Validator TenantValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/ready", "/api/v1/tenants"},
		Required:  true,
		Logger:    zap.NewNop(),
	}
}

// Tenant extracts the tenant from the X-Tenant-ID header and threads it
// through the gin and request contexts. Every tenant-scoped handler
// downstream reads it from here, never from the request body.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			if cfg.Required {
				abortUnauthorized(c, "Tenant identification required")
				return
			}
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortUnauthorized(c, "Invalid tenant ID format")
			return
		}

		if cfg.Validator != nil {
			if err := cfg.Validator.ValidateTenant(tenantID); err != nil {
				cfg.Logger.Warn("tenant validation failed",
					zap.String("tenant_id", tenantID.String()),
					zap.Error(err))
				abortForbidden(c, "Unknown or inactive tenant")
				return
			}
		}

		c.Set(TenantIDKey, tenantID)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithTenantID(ctx, log, tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// User extracts the acting user from the X-User-ID header. The user is
// only needed for notification routing, so absence is not an error
// here; handlers that need it reject the request themselves.
func User() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeaderKey)
		if raw == "" {
			c.Next()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid user ID format")
			return
		}

		c.Set(UserIDKey, userID)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, userID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantID retrieves the tenant ID set by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok && tenantID != uuid.Nil
}

// GetUserID retrieves the user ID set by the User middleware
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
}
