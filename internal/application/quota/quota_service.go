package quota

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/domain/identity"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/domain/usage"
	"go.uber.org/zap"
)

// QuotaService answers quota questions for tenants. It reads the
// tenant's limits fresh per evaluation, since limits can change
// between requests, and delegates the actual decision to the pure
// evaluation in the usage package.
type QuotaService struct {
	tenantRepo identity.TenantRepository
	skuRepo    catalog.SKURepository
	ledger     usage.Ledger
	logger     *zap.Logger
}

// NewQuotaService creates a new QuotaService
func NewQuotaService(
	tenantRepo identity.TenantRepository,
	skuRepo catalog.SKURepository,
	ledger usage.Ledger,
	logger *zap.Logger,
) *QuotaService {
	return &QuotaService{
		tenantRepo: tenantRepo,
		skuRepo:    skuRepo,
		ledger:     ledger,
		logger:     logger,
	}
}

// CheckTenantQuota loads the tenant, its current-window usage snapshot
// and its SKU count, and evaluates them into a QuotaInfo
func (s *QuotaService) CheckTenantQuota(ctx context.Context, tenantID uuid.UUID) (*usage.QuotaInfo, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Tenant ID cannot be empty")
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found")
		}
		s.logger.Error("Failed to find tenant", zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to find tenant")
	}

	snapshot, err := s.ledger.Snapshot(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to read usage snapshot",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to read usage counters")
	}

	skuCount, err := s.skuRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to count SKUs",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to count SKUs")
	}

	info := usage.Evaluate(tenant, snapshot, skuCount)

	s.logger.Debug("Quota evaluated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("status", info.Status.String()),
		zap.Bool("can_process", info.CanProcess))

	return &info, nil
}

// EnsureCanProcess checks the image-processing quota and returns a
// typed QUOTA_EXCEEDED error when processing is denied. Callers must
// invoke this before any provider call.
func (s *QuotaService) EnsureCanProcess(ctx context.Context, tenantID uuid.UUID) (*usage.QuotaInfo, error) {
	info, err := s.CheckTenantQuota(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !info.CanProcess {
		return info, shared.NewDomainError(shared.ErrCodeQuotaExceeded, fmt.Sprintf(
			"Image processing quota exhausted (status %s, monthly %d/%d)",
			info.Status, info.MonthlyUsage, info.MonthlyLimit))
	}
	return info, nil
}

// EnsureCanAddSKU checks the SKU quota and returns a typed
// QUOTA_EXCEEDED error when registration is denied
func (s *QuotaService) EnsureCanAddSKU(ctx context.Context, tenantID uuid.UUID) error {
	info, err := s.CheckTenantQuota(ctx, tenantID)
	if err != nil {
		return err
	}
	if !info.CanAddSKU {
		return shared.NewDomainError(shared.ErrCodeQuotaExceeded, fmt.Sprintf(
			"SKU limit reached (%d/%d)", info.SKUCount, info.SKULimit))
	}
	return nil
}
