package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appnotification "github.com/shelfsight/backend/internal/application/notification"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/domain/notification"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Notifier dispatches user-facing notifications
type Notifier interface {
	Emit(ctx context.Context, input appnotification.EmitInput) (*notification.Notification, error)
}

// TrainingCompletedHandler handles SKUTrainingCompletedEvent and tells
// the user who drove the transition that the SKU is ready for matching
type TrainingCompletedHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewTrainingCompletedHandler creates a new handler for SKU training completion events
func NewTrainingCompletedHandler(notifier Notifier, logger *zap.Logger) *TrainingCompletedHandler {
	return &TrainingCompletedHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TrainingCompletedHandler) EventTypes() []string {
	return []string{catalog.EventTypeSKUTrainingCompleted}
}

// Handle emits a training_complete notification for the completed SKU.
// Events without an acting user come from pipeline callbacks and have
// nobody to address, so they are skipped.
func (h *TrainingCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*catalog.SKUTrainingCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeSKUTrainingCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeSKUTrainingCompleted, event.EventType())
	}

	if completed.ActorID == uuid.Nil {
		h.logger.Debug("training completion without acting user, no notification",
			zap.String("sku_id", completed.AggregateID().String()))
		return nil
	}

	tenantID := completed.TenantID()
	_, err := h.notifier.Emit(ctx, appnotification.EmitInput{
		UserID:   completed.ActorID,
		TenantID: &tenantID,
		Type:     notification.TypeTrainingComplete,
		Title:    "SKU training complete",
		Message:  fmt.Sprintf("%s is trained and ready for detection", completed.Name),
		Metadata: map[string]any{
			"sku_id":   completed.AggregateID().String(),
			"sku_name": completed.Name,
		},
		DedupeKey: "training-complete:" + event.EventID().String(),
	})
	if err != nil {
		h.logger.Error("failed to emit training completion notification",
			zap.String("sku_id", completed.AggregateID().String()),
			zap.Error(err))
		return fmt.Errorf("failed to emit notification: %w", err)
	}

	return nil
}
