package handler

import (
	"github.com/gin-gonic/gin"
	appquota "github.com/shelfsight/backend/internal/application/quota"
)

// QuotaHandler exposes the caller's current quota standing
type QuotaHandler struct {
	BaseHandler
	quotaService *appquota.QuotaService
}

// NewQuotaHandler creates a new quota handler
func NewQuotaHandler(quotaService *appquota.QuotaService) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
	}
}

// Get evaluates and returns the tenant's quota snapshot. The evaluation
// is read-only; nothing is consumed by asking.
func (h *QuotaHandler) Get(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	info, err := h.quotaService.CheckTenantQuota(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}
