package detection

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// ResultRepository persists detection results for audit and history
type ResultRepository interface {
	Save(ctx context.Context, result *Result) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Result, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Result], error)
}
