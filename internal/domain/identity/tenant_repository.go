package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	// FindByID retrieves a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByCode retrieves a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// Save persists a tenant (create or update)
	Save(ctx context.Context, tenant *Tenant) error
}
