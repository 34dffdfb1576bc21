package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SKUQuotaGate decides whether a tenant may register another SKU
type SKUQuotaGate interface {
	EnsureCanAddSKU(ctx context.Context, tenantID uuid.UUID) error
}

// CreateSKUInput contains input for registering a SKU
type CreateSKUInput struct {
	TenantID uuid.UUID
	Name     string
	Category string
}

// SKUService manages the tenant product catalog. Registration is
// quota-gated; every registered SKU counts toward the limit regardless
// of its training status.
type SKUService struct {
	skuRepo   catalog.SKURepository
	quotaGate SKUQuotaGate
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewSKUService creates a new SKUService
func NewSKUService(
	skuRepo catalog.SKURepository,
	quotaGate SKUQuotaGate,
	events shared.EventPublisher,
	logger *zap.Logger,
) *SKUService {
	return &SKUService{
		skuRepo:   skuRepo,
		quotaGate: quotaGate,
		events:    events,
		logger:    logger,
	}
}

// CreateSKU registers a new SKU after checking the tenant's SKU quota
func (s *SKUService) CreateSKU(ctx context.Context, input CreateSKUInput) (*catalog.SKU, error) {
	if err := s.quotaGate.EnsureCanAddSKU(ctx, input.TenantID); err != nil {
		return nil, err
	}

	sku, err := catalog.NewSKU(input.TenantID, input.Name, input.Category)
	if err != nil {
		return nil, err
	}

	if err := s.skuRepo.Save(ctx, sku); err != nil {
		s.logger.Error("Failed to persist SKU",
			zap.String("tenant_id", input.TenantID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist SKU")
	}

	s.publishEvents(ctx, sku)

	s.logger.Info("SKU registered",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("sku_id", sku.ID.String()),
		zap.String("name", sku.Name))

	return sku, nil
}

// GetSKU loads one SKU, scoped to its tenant
func (s *SKUService) GetSKU(ctx context.Context, tenantID, id uuid.UUID) (*catalog.SKU, error) {
	sku, err := s.skuRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to load SKU")
	}
	return sku, nil
}

// ListSKUs lists a tenant's SKUs
func (s *SKUService) ListSKUs(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*catalog.SKU, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Tenant ID cannot be empty")
	}
	skus, err := s.skuRepo.FindByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to list SKUs")
	}
	return skus, nil
}

// TransitionTraining advances a SKU through the training state machine.
// actorID identifies the caller driving the transition and may be nil
// when the update comes from an unauthenticated pipeline callback.
func (s *SKUService) TransitionTraining(ctx context.Context, tenantID, id uuid.UUID, next catalog.TrainingStatus, actorID uuid.UUID) (*catalog.SKU, error) {
	sku, err := s.GetSKU(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := sku.TransitionTraining(next); err != nil {
		return nil, err
	}

	if err := s.skuRepo.Save(ctx, sku); err != nil {
		s.logger.Error("Failed to persist SKU training transition",
			zap.String("sku_id", id.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist SKU")
	}

	for _, ev := range sku.GetDomainEvents() {
		if completed, ok := ev.(*catalog.SKUTrainingCompletedEvent); ok {
			completed.ActorID = actorID
		}
	}
	s.publishEvents(ctx, sku)

	return sku, nil
}

// RenameSKU updates a SKU's display name
func (s *SKUService) RenameSKU(ctx context.Context, tenantID, id uuid.UUID, name string) (*catalog.SKU, error) {
	sku, err := s.GetSKU(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := sku.Rename(name); err != nil {
		return nil, err
	}

	if err := s.skuRepo.Save(ctx, sku); err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist SKU")
	}

	return sku, nil
}

func (s *SKUService) publishEvents(ctx context.Context, sku *catalog.SKU) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, sku.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish SKU events",
			zap.String("sku_id", sku.ID.String()),
			zap.Error(err))
	}
	sku.ClearDomainEvents()
}
