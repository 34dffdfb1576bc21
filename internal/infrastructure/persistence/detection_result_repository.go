package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/detection"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDetectionResultRepository implements ResultRepository using GORM.
// Results round-trip through DetectionResultModel because the match
// lists live in JSONB columns.
type GormDetectionResultRepository struct {
	db *gorm.DB
}

// NewGormDetectionResultRepository creates a new GormDetectionResultRepository
func NewGormDetectionResultRepository(db *gorm.DB) *GormDetectionResultRepository {
	return &GormDetectionResultRepository{db: db}
}

// Save persists a detection result
func (r *GormDetectionResultRepository) Save(ctx context.Context, result *detection.Result) error {
	model := models.DetectionResultModelFromDomain(result)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a detection result by ID within a tenant
func (r *GormDetectionResultRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*detection.Result, error) {
	var model models.DetectionResultModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds detection results for a tenant with pagination
func (r *GormDetectionResultRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*detection.Result], error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.DetectionResultModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.DetectionResultModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.DetectionResultModel{}).Where("tenant_id = ?", tenantID),
		filter,
		DetectionResultSortFields,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]*detection.Result, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].ToDomain())
	}

	page, pageSize := normalizePage(filter)
	paginated := shared.NewPaginated(results, total, page, pageSize)
	return &paginated, nil
}

// FindByStore finds detection results for a specific store within a tenant
func (r *GormDetectionResultRepository) FindByStore(ctx context.Context, tenantID, storeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*detection.Result], error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.DetectionResultModel{}).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.DetectionResultModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.DetectionResultModel{}).
			Where("tenant_id = ? AND store_id = ?", tenantID, storeID),
		filter,
		DetectionResultSortFields,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]*detection.Result, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].ToDomain())
	}

	page, pageSize := normalizePage(filter)
	paginated := shared.NewPaginated(results, total, page, pageSize)
	return &paginated, nil
}

// normalizePage mirrors the defaults applyFilter uses so pagination
// metadata matches the rows actually fetched
func normalizePage(filter shared.Filter) (int, int) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}
