package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/shelfsight/backend/internal/application/catalog"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/interfaces/http/dto"
)

// SKUHandler handles product catalog HTTP requests
type SKUHandler struct {
	BaseHandler
	skuService *appcatalog.SKUService
}

// NewSKUHandler creates a new SKU handler
func NewSKUHandler(skuService *appcatalog.SKUService) *SKUHandler {
	return &SKUHandler{
		skuService: skuService,
	}
}

// CreateSKURequest is the body for registering a SKU
type CreateSKURequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Category string `json:"category" binding:"required,max=100"`
}

// RenameSKURequest is the body for renaming a SKU
type RenameSKURequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// TrainingTransitionRequest is the body for advancing training state
type TrainingTransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=pending training completed failed"`
}

// SKUResponse is the API shape of a SKU
type SKUResponse struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	TrainingStatus string    `json:"training_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toSKUResponse(sku *catalog.SKU) SKUResponse {
	return SKUResponse{
		ID:             sku.ID.String(),
		TenantID:       sku.TenantID.String(),
		Name:           sku.Name,
		Category:       sku.Category,
		TrainingStatus: sku.TrainingStatus.String(),
		CreatedAt:      sku.CreatedAt,
		UpdatedAt:      sku.UpdatedAt,
	}
}

// Create registers a new SKU, subject to the tenant's SKU quota
func (h *SKUHandler) Create(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sku, err := h.skuService.CreateSKU(c.Request.Context(), appcatalog.CreateSKUInput{
		TenantID: tenantID,
		Name:     req.Name,
		Category: req.Category,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSKUResponse(sku))
}

// List returns the tenant's registered SKUs
func (h *SKUHandler) List(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	skus, err := h.skuService.ListSKUs(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]SKUResponse, 0, len(skus))
	for _, sku := range skus {
		items = append(items, toSKUResponse(sku))
	}

	h.Success(c, items)
}

// GetByID returns one SKU scoped to the caller's tenant
func (h *SKUHandler) GetByID(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid SKU ID")
		return
	}

	sku, err := h.skuService.GetSKU(c.Request.Context(), tenantID, uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSKUResponse(sku))
}

// Rename updates a SKU's display name
func (h *SKUHandler) Rename(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var uriReq dto.IDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		h.BadRequest(c, "Invalid SKU ID")
		return
	}

	var req RenameSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sku, err := h.skuService.RenameSKU(c.Request.Context(), tenantID, uuid.MustParse(uriReq.ID), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSKUResponse(sku))
}

// Transition advances a SKU through the training state machine
func (h *SKUHandler) Transition(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var uriReq dto.IDRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		h.BadRequest(c, "Invalid SKU ID")
		return
	}

	var req TrainingTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	// The acting user is optional here: training pipelines report status
	// without a user identity, and then no notification is addressed.
	actorID, _ := userFrom(c)

	sku, err := h.skuService.TransitionTraining(c.Request.Context(), tenantID,
		uuid.MustParse(uriReq.ID), catalog.TrainingStatus(req.Status), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSKUResponse(sku))
}
