package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSKURepository implements SKURepository using GORM
type GormSKURepository struct {
	db *gorm.DB
}

// NewGormSKURepository creates a new GormSKURepository
func NewGormSKURepository(db *gorm.DB) *GormSKURepository {
	return &GormSKURepository{db: db}
}

// Save creates or updates a SKU
func (r *GormSKURepository) Save(ctx context.Context, sku *catalog.SKU) error {
	return r.db.WithContext(ctx).Save(sku).Error
}

// FindByID finds a SKU by ID within a tenant
func (r *GormSKURepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.SKU, error) {
	var sku catalog.SKU
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sku, nil
}

// FindByTenant finds all SKUs for a tenant matching the filter
func (r *GormSKURepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.SKU, error) {
	var skus []*catalog.SKU
	query := applyFilter(
		r.db.WithContext(ctx).Model(&catalog.SKU{}).Where("tenant_id = ?", tenantID),
		filter,
		SKUSortFields,
	)

	if err := query.Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// FindByCategory finds SKUs in a category for a tenant
func (r *GormSKURepository) FindByCategory(ctx context.Context, tenantID uuid.UUID, category string, filter shared.Filter) ([]*catalog.SKU, error) {
	var skus []*catalog.SKU
	query := applyFilter(
		r.db.WithContext(ctx).Model(&catalog.SKU{}).
			Where("tenant_id = ? AND category = ?", tenantID, category),
		filter,
		SKUSortFields,
	)

	if err := query.Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// FindTrained finds SKUs whose recognition training has completed.
// These are the candidates the aggregator matches raw detections
// against.
func (r *GormSKURepository) FindTrained(ctx context.Context, tenantID uuid.UUID) ([]*catalog.SKU, error) {
	var skus []*catalog.SKU
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND training_status = ?", tenantID, catalog.TrainingStatusCompleted).
		Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// CountByTenant counts all SKUs for a tenant regardless of training status
func (r *GormSKURepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.SKU{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete deletes a SKU within a tenant
func (r *GormSKURepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.SKU{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
