package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// SKURepository defines persistence operations for SKUs
type SKURepository interface {
	// Save persists a SKU (create or update)
	Save(ctx context.Context, sku *SKU) error

	// FindByID retrieves a SKU by ID, scoped to a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SKU, error)

	// FindByTenant lists SKUs for a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*SKU, error)

	// CountByTenant returns the number of registered SKUs for a tenant,
	// regardless of training status. This feeds the SKU quota check.
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
