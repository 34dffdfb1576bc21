package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/identity"
	"github.com/shelfsight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateTenantInput contains input for provisioning a tenant
type CreateTenantInput struct {
	Code         string
	Name         string
	Plan         identity.TenantPlan
	ContactEmail string
}

// UpdateLimitsInput contains the full replacement limit set for a tenant
type UpdateLimitsInput struct {
	MaxSKUs           int64
	MaxImagesPerWeek  int64
	MaxImagesPerMonth int64
	MaxImagesPerYear  int64
}

// TenantService provisions and administers tenants. Limits change only
// through an explicit admin update; deactivation freezes all quota
// checks to denied.
type TenantService struct {
	tenantRepo identity.TenantRepository
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo identity.TenantRepository, events shared.EventPublisher, logger *zap.Logger) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		events:     events,
		logger:     logger,
	}
}

// CreateTenant provisions a new tenant with plan defaults
func (s *TenantService) CreateTenant(ctx context.Context, input CreateTenantInput) (*identity.Tenant, error) {
	existing, err := s.tenantRepo.FindByCode(ctx, input.Code)
	if err != nil && err != shared.ErrNotFound {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to check tenant code")
	}
	if existing != nil {
		return nil, shared.NewDomainError("TENANT_CODE_TAKEN", "Tenant code is already in use")
	}

	tenant, err := identity.NewTenant(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if input.Plan != "" {
		if err := tenant.ChangePlan(input.Plan); err != nil {
			return nil, err
		}
	}
	tenant.ContactEmail = input.ContactEmail

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to persist tenant", zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist tenant")
	}

	s.publishEvents(ctx, tenant)

	s.logger.Info("Tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))

	return tenant, nil
}

// GetTenant loads one tenant
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to load tenant")
	}
	return tenant, nil
}

// UpdateLimits replaces a tenant's resource limits
func (s *TenantService) UpdateLimits(ctx context.Context, id uuid.UUID, input UpdateLimitsInput) (*identity.Tenant, error) {
	tenant, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tenant.UpdateLimits(identity.ResourceLimits{
		MaxSKUs:           input.MaxSKUs,
		MaxImagesPerWeek:  input.MaxImagesPerWeek,
		MaxImagesPerMonth: input.MaxImagesPerMonth,
		MaxImagesPerYear:  input.MaxImagesPerYear,
	}); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist tenant")
	}

	s.publishEvents(ctx, tenant)

	return tenant, nil
}

// ChangeStatus activates, deactivates or suspends a tenant
func (s *TenantService) ChangeStatus(ctx context.Context, id uuid.UUID, status identity.TenantStatus) (*identity.Tenant, error) {
	tenant, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case identity.TenantStatusActive:
		tenant.Activate()
	case identity.TenantStatusInactive:
		tenant.Deactivate()
	case identity.TenantStatusSuspended:
		tenant.Suspend()
	default:
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Unknown tenant status")
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist tenant")
	}

	s.publishEvents(ctx, tenant)

	return tenant, nil
}

func (s *TenantService) publishEvents(ctx context.Context, tenant *identity.Tenant) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, tenant.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish tenant events",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err))
	}
	tenant.ClearDomainEvents()
}
