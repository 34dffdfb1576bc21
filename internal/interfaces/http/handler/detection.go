package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appdetection "github.com/shelfsight/backend/internal/application/detection"
	"github.com/shelfsight/backend/internal/domain/detection"
	"github.com/shelfsight/backend/internal/interfaces/http/dto"
)

// DetectionHandler handles shelf image detection HTTP requests
type DetectionHandler struct {
	BaseHandler
	detectionService *appdetection.DetectionService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(detectionService *appdetection.DetectionService) *DetectionHandler {
	return &DetectionHandler{
		detectionService: detectionService,
	}
}

// ProcessImageRequest is the body of a detection request
type ProcessImageRequest struct {
	ImageReference      string             `json:"image_reference" binding:"required,max=500"`
	StoreID             *string            `json:"store_id" binding:"omitempty,uuid"`
	ConfidenceThreshold *float64           `json:"confidence_threshold" binding:"omitempty,min=0.5,max=1"`
	CandidateSKUs       []CandidateSKUBody `json:"candidate_skus" binding:"omitempty,dive"`
}

// CandidateSKUBody narrows the match set for one request
type CandidateSKUBody struct {
	ID       string `json:"id" binding:"required,uuid"`
	Name     string `json:"name" binding:"required,max=200"`
	Category string `json:"category" binding:"required,max=100"`
}

// DetectionResultResponse is the API shape of a detection result
type DetectionResultResponse struct {
	ID             string                   `json:"id"`
	TenantID       string                   `json:"tenant_id"`
	ImageReference string                   `json:"image_reference"`
	StoreID        *string                  `json:"store_id,omitempty"`
	Matches        []detection.SKUMatch     `json:"matches"`
	MissingSKUs    []detection.CandidateSKU `json:"missing_skus"`
	ShareOfShelf   detection.ShareOfShelf   `json:"share_of_shelf"`
	Summary        string                   `json:"summary"`
	CreatedAt      time.Time                `json:"created_at"`
}

func toDetectionResultResponse(result *detection.Result) DetectionResultResponse {
	resp := DetectionResultResponse{
		ID:             result.ID.String(),
		TenantID:       result.TenantID.String(),
		ImageReference: result.ImageReference,
		Matches:        result.Matches,
		MissingSKUs:    result.MissingSKUs,
		ShareOfShelf:   result.ShareOfShelf,
		Summary:        result.Summary,
		CreatedAt:      result.CreatedAt,
	}
	if resp.Matches == nil {
		resp.Matches = []detection.SKUMatch{}
	}
	if resp.MissingSKUs == nil {
		resp.MissingSKUs = []detection.CandidateSKU{}
	}
	if result.StoreID != nil {
		storeID := result.StoreID.String()
		resp.StoreID = &storeID
	}
	return resp
}

// Process runs the detection pipeline for one shelf image
func (h *DetectionHandler) Process(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req ProcessImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	input := appdetection.ProcessImageInput{
		TenantID:            tenantID,
		ImageReference:      req.ImageReference,
		ConfidenceThreshold: req.ConfidenceThreshold,
	}
	if userID, ok := userFrom(c); ok {
		input.UserID = userID
	}
	if req.StoreID != nil {
		storeID, err := uuid.Parse(*req.StoreID)
		if err != nil {
			h.BadRequest(c, "Invalid store ID")
			return
		}
		input.StoreID = &storeID
	}
	for _, candidate := range req.CandidateSKUs {
		id, err := uuid.Parse(candidate.ID)
		if err != nil {
			h.BadRequest(c, "Invalid candidate SKU ID")
			return
		}
		input.CandidateSKUs = append(input.CandidateSKUs, detection.CandidateSKU{
			ID:       id,
			Name:     candidate.Name,
			Category: candidate.Category,
		})
	}

	result, err := h.detectionService.ProcessImage(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toDetectionResultResponse(result))
}

// List returns the tenant's detection history, newest first
func (h *DetectionHandler) List(c *gin.Context) {
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
	filter := req.ToFilter()

	page, err := h.detectionService.ListResults(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]DetectionResultResponse, 0, len(page.Items))
	for _, result := range page.Items {
		items = append(items, toDetectionResultResponse(result))
	}

	h.SuccessWithMeta(c, items, page.Total, filter.Page, filter.PageSize)
}

// GetByID returns one detection result scoped to the caller's tenant
func (h *DetectionHandler) GetByID(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid detection result ID")
		return
	}
	id := uuid.MustParse(req.ID)

	result, err := h.detectionService.GetResult(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDetectionResultResponse(result))
}
