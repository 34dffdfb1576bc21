package detection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appnotification "github.com/shelfsight/backend/internal/application/notification"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/domain/detection"
	"github.com/shelfsight/backend/internal/domain/notification"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/domain/usage"
	"go.uber.org/zap"
)

// QuotaGate decides whether a tenant may process another image. It is
// consulted before every provider call and must short-circuit the
// pipeline when processing is denied.
type QuotaGate interface {
	EnsureCanProcess(ctx context.Context, tenantID uuid.UUID) (*usage.QuotaInfo, error)
}

// Notifier dispatches user-facing notifications
type Notifier interface {
	Emit(ctx context.Context, input appnotification.EmitInput) (*notification.Notification, error)
}

// Config holds detection pipeline settings
type Config struct {
	// ConfidenceThreshold filters provider detections. Valid range is
	// [0.5, 1.0]; values outside it are rejected at this boundary.
	ConfidenceThreshold float64

	// ProviderTimeout bounds the single blocking step in the pipeline
	ProviderTimeout time.Duration
}

// DefaultConfig returns the default detection configuration
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.95,
		ProviderTimeout:     30 * time.Second,
	}
}

// Validate checks the configuration bounds
func (c Config) Validate() error {
	if err := validateThreshold(c.ConfidenceThreshold); err != nil {
		return err
	}
	if c.ProviderTimeout <= 0 {
		return shared.NewDomainError(shared.ErrCodeValidation, "Provider timeout must be positive")
	}
	return nil
}

func validateThreshold(threshold float64) error {
	if threshold < 0.5 || threshold > 1.0 {
		return shared.NewDomainError(shared.ErrCodeValidation,
			fmt.Sprintf("Confidence threshold %.2f is outside [0.5, 1.0]", threshold))
	}
	return nil
}

// ProcessImageInput describes one inbound detection request
type ProcessImageInput struct {
	TenantID       uuid.UUID
	UserID         uuid.UUID
	ImageReference string
	StoreID        *uuid.UUID

	// CandidateSKUs optionally narrows the match set. When empty, the
	// tenant's trained catalog is used.
	CandidateSKUs []detection.CandidateSKU

	// ConfidenceThreshold optionally overrides the configured value,
	// subject to the same [0.5, 1.0] bound
	ConfidenceThreshold *float64
}

// DetectionService orchestrates the shelf image pipeline: quota gate,
// provider call, aggregation, persistence, usage metering and
// notification fan-out. Each request is an independent unit of work;
// the only shared state is the usage ledger.
type DetectionService struct {
	quotaGate  QuotaGate
	skuRepo    catalog.SKURepository
	resultRepo detection.ResultRepository
	ledger     usage.Ledger
	provider   Provider
	events     shared.EventPublisher
	notifier   Notifier
	logger     *zap.Logger
	config     Config
}

// NewDetectionService creates a new DetectionService
func NewDetectionService(
	quotaGate QuotaGate,
	skuRepo catalog.SKURepository,
	resultRepo detection.ResultRepository,
	ledger usage.Ledger,
	provider Provider,
	events shared.EventPublisher,
	notifier Notifier,
	logger *zap.Logger,
	config Config,
) *DetectionService {
	return &DetectionService{
		quotaGate:  quotaGate,
		skuRepo:    skuRepo,
		resultRepo: resultRepo,
		ledger:     ledger,
		provider:   provider,
		events:     events,
		notifier:   notifier,
		logger:     logger,
		config:     config,
	}
}

// ProcessImage runs the full detection pipeline for one shelf image.
// The quota gate runs before the provider call and denial never
// reaches the provider. A ledger or notification failure after a
// persisted result is logged and reported but the result is kept;
// undercounting usage is preferred over losing a finished detection.
func (s *DetectionService) ProcessImage(ctx context.Context, input ProcessImageInput) (*detection.Result, error) {
	if input.TenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(input.ImageReference) == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Image reference cannot be empty")
	}

	threshold := s.config.ConfidenceThreshold
	if input.ConfidenceThreshold != nil {
		if err := validateThreshold(*input.ConfidenceThreshold); err != nil {
			return nil, err
		}
		threshold = *input.ConfidenceThreshold
	}

	quotaInfo, err := s.quotaGate.EnsureCanProcess(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	candidates := input.CandidateSKUs
	if len(candidates) == 0 {
		candidates, err = s.trainedCandidates(ctx, input.TenantID)
		if err != nil {
			return nil, err
		}
	}

	raw, err := s.callProvider(ctx, input.ImageReference)
	if err != nil {
		return nil, err
	}

	agg := detection.Aggregate(raw, candidates, threshold)

	result, err := detection.NewResult(input.TenantID, input.ImageReference, input.StoreID, agg)
	if err != nil {
		return nil, err
	}
	if err := s.resultRepo.Save(ctx, result); err != nil {
		s.logger.Error("Failed to persist detection result",
			zap.String("tenant_id", input.TenantID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist detection result")
	}

	s.meterUsage(ctx, input, result.ID)
	s.publishEvents(ctx, result)
	s.notifyCompletion(ctx, input, result, quotaInfo)

	s.logger.Info("Shelf image processed",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("result_id", result.ID.String()),
		zap.Int("matched", result.MatchedCount()),
		zap.Int("missing", result.MissingCount()),
		zap.Float64("shelf_share", result.ShareOfShelf.Percentage))

	return result, nil
}

// GetResult loads one detection result, scoped to its tenant
func (s *DetectionService) GetResult(ctx context.Context, tenantID, id uuid.UUID) (*detection.Result, error) {
	result, err := s.resultRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to load detection result")
	}
	return result, nil
}

// ListResults returns the tenant's detection history, newest first
func (s *DetectionService) ListResults(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*detection.Result], error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Tenant ID cannot be empty")
	}
	results, err := s.resultRepo.FindByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to list detection results")
	}
	return results, nil
}

// trainedCandidates builds the default match set from the tenant's
// completed-training SKUs
func (s *DetectionService) trainedCandidates(ctx context.Context, tenantID uuid.UUID) ([]detection.CandidateSKU, error) {
	filter := shared.Filter{Page: 1, PageSize: 1000, OrderBy: "created_at", OrderDir: "asc"}
	skus, err := s.skuRepo.FindByTenant(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to load SKU catalog",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to load SKU catalog")
	}

	candidates := make([]detection.CandidateSKU, 0, len(skus))
	for _, sku := range skus {
		if !sku.IsTrained() {
			continue
		}
		candidates = append(candidates, detection.CandidateSKU{
			ID:       sku.ID,
			Name:     sku.Name,
			Category: sku.Category,
		})
	}
	return candidates, nil
}

func (s *DetectionService) callProvider(ctx context.Context, imageReference string) ([]detection.RawDetection, error) {
	providerCtx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()

	raw, err := s.provider.Detect(providerCtx, imageReference)
	if err != nil {
		s.logger.Error("Detection provider call failed", zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeProvider, err.Error())
	}
	return raw, nil
}

// meterUsage increments every accounting window for one processed
// image. The result ID keys the idempotency scope, so a retried
// increment for the same detection cannot double count. A failed
// increment keeps the result and raises a system alert instead.
func (s *DetectionService) meterUsage(ctx context.Context, input ProcessImageInput, resultID uuid.UUID) {
	tenantID := input.TenantID
	var failed []string
	for _, periodType := range usage.AllPeriodTypes() {
		key := fmt.Sprintf("detection:%s:%s", resultID, periodType)
		if err := s.ledger.Increment(ctx, tenantID, periodType, 1, key); err != nil {
			s.logger.Error("Usage increment failed, result kept",
				zap.String("tenant_id", tenantID.String()),
				zap.String("result_id", resultID.String()),
				zap.String("period_type", periodType.String()),
				zap.Error(err))
			failed = append(failed, periodType.String())
		}
	}

	if len(failed) == 0 || s.notifier == nil || input.UserID == uuid.Nil {
		return
	}
	if _, err := s.notifier.Emit(ctx, appnotification.EmitInput{
		UserID:   input.UserID,
		TenantID: &tenantID,
		Type:     notification.TypeSystemAlert,
		Title:    "Usage metering failed",
		Message:  "The detection finished but usage could not be recorded for: " + strings.Join(failed, ", "),
		Metadata: map[string]any{
			"result_id": resultID.String(),
			"periods":   failed,
		},
		DedupeKey: "metering-failed:" + resultID.String(),
	}); err != nil {
		s.logger.Warn("Failed to emit metering alert", zap.Error(err))
	}
}

func (s *DetectionService) publishEvents(ctx context.Context, result *detection.Result) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, result.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish detection events",
			zap.String("result_id", result.ID.String()),
			zap.Error(err))
	}
	result.ClearDomainEvents()
}

// notifyCompletion emits the processing_complete notification and, when
// the quota evaluation flagged the tenant, a quota_warning deduplicated
// per tenant and month. Both are fire-and-forget.
func (s *DetectionService) notifyCompletion(ctx context.Context, input ProcessImageInput, result *detection.Result, quotaInfo *usage.QuotaInfo) {
	if s.notifier == nil || input.UserID == uuid.Nil {
		return
	}

	tenantID := input.TenantID
	if _, err := s.notifier.Emit(ctx, appnotification.EmitInput{
		UserID:   input.UserID,
		TenantID: &tenantID,
		Type:     notification.TypeProcessingComplete,
		Title:    "Shelf image processed",
		Message:  result.Summary,
		Metadata: map[string]any{
			"result_id":   result.ID.String(),
			"shelf_share": result.ShareOfShelf.Percentage,
		},
		DedupeKey: "detection-complete:" + result.ID.String(),
	}); err != nil {
		s.logger.Warn("Failed to emit completion notification", zap.Error(err))
	}

	if quotaInfo == nil || !quotaInfo.ShouldWarn() {
		return
	}

	monthStart := usage.PeriodStartFor(usage.PeriodMonthly, time.Now())
	if _, err := s.notifier.Emit(ctx, appnotification.EmitInput{
		UserID:   input.UserID,
		TenantID: &tenantID,
		Type:     notification.TypeQuotaWarning,
		Title:    "Image quota warning",
		Message: fmt.Sprintf("Monthly image usage at %d of %d",
			quotaInfo.MonthlyUsage, quotaInfo.MonthlyLimit),
		Metadata: map[string]any{
			"status":        quotaInfo.Status.String(),
			"monthly_usage": quotaInfo.MonthlyUsage,
			"monthly_limit": quotaInfo.MonthlyLimit,
		},
		DedupeKey: fmt.Sprintf("quota-warning:%s:%s", tenantID, monthStart.Format("2006-01-02")),
	}); err != nil {
		s.logger.Warn("Failed to emit quota warning", zap.Error(err))
	}
}
