package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/shelfsight/backend/internal/application/identity"
	appquota "github.com/shelfsight/backend/internal/application/quota"
	"github.com/shelfsight/backend/internal/domain/identity"
	"github.com/shelfsight/backend/internal/interfaces/http/dto"
)

// TenantHandler handles tenant administration HTTP requests. These
// routes sit outside tenant-header scoping; they are the provisioning
// surface operators use before a tenant exists.
type TenantHandler struct {
	BaseHandler
	tenantService *appidentity.TenantService
	quotaService  *appquota.QuotaService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *appidentity.TenantService, quotaService *appquota.QuotaService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		quotaService:  quotaService,
	}
}

// CreateTenantRequest is the body for provisioning a tenant
type CreateTenantRequest struct {
	Code         string `json:"code" binding:"required,min=2,max=50"`
	Name         string `json:"name" binding:"required,max=200"`
	Plan         string `json:"plan" binding:"omitempty,oneof=free starter pro enterprise"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// UpdateLimitsRequest is the full replacement limit set for a tenant
type UpdateLimitsRequest struct {
	MaxSKUs           int64 `json:"max_skus" binding:"required,min=0"`
	MaxImagesPerWeek  int64 `json:"max_images_per_week" binding:"required,min=0"`
	MaxImagesPerMonth int64 `json:"max_images_per_month" binding:"required,min=0"`
	MaxImagesPerYear  int64 `json:"max_images_per_year" binding:"required,min=0"`
}

// ChangeStatusRequest sets a tenant's lifecycle status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// TenantResponse is the API shape of a tenant
type TenantResponse struct {
	ID           string                  `json:"id"`
	Code         string                  `json:"code"`
	Name         string                  `json:"name"`
	Status       string                  `json:"status"`
	Plan         string                  `json:"plan"`
	ContactEmail string                  `json:"contact_email,omitempty"`
	Limits       identity.ResourceLimits `json:"limits"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func toTenantResponse(tenant *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:           tenant.ID.String(),
		Code:         tenant.Code,
		Name:         tenant.Name,
		Status:       string(tenant.Status),
		Plan:         string(tenant.Plan),
		ContactEmail: tenant.ContactEmail,
		Limits:       tenant.Limits,
		CreatedAt:    tenant.CreatedAt,
		UpdatedAt:    tenant.UpdatedAt,
	}
}

// Create provisions a new tenant with plan defaults
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), appidentity.CreateTenantInput{
		Code:         req.Code,
		Name:         req.Name,
		Plan:         identity.TenantPlan(req.Plan),
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toTenantResponse(tenant))
}

// GetByID returns one tenant
func (h *TenantHandler) GetByID(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// UpdateLimits replaces a tenant's resource limits. The new ceilings
// take effect on the next quota evaluation; nothing already processed
// is re-judged.
func (h *TenantHandler) UpdateLimits(c *gin.Context) {
	var uriReq dto.IDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req UpdateLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.tenantService.UpdateLimits(c.Request.Context(), uuid.MustParse(uriReq.ID), appidentity.UpdateLimitsInput{
		MaxSKUs:           req.MaxSKUs,
		MaxImagesPerWeek:  req.MaxImagesPerWeek,
		MaxImagesPerMonth: req.MaxImagesPerMonth,
		MaxImagesPerYear:  req.MaxImagesPerYear,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// ChangeStatus activates, deactivates or suspends a tenant
func (h *TenantHandler) ChangeStatus(c *gin.Context) {
	var uriReq dto.IDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.tenantService.ChangeStatus(c.Request.Context(), uuid.MustParse(uriReq.ID), identity.TenantStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toTenantResponse(tenant))
}

// GetQuota returns the quota standing of one tenant, for operators
// investigating usage without impersonating the tenant
func (h *TenantHandler) GetQuota(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	info, err := h.quotaService.CheckTenantQuota(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}
