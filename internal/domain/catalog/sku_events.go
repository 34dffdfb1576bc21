package catalog

import (
	"github.com/google/uuid"

	"github.com/shelfsight/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSKU = "SKU"

// Event type constants
const (
	EventTypeSKUCreated           = "SKUCreated"
	EventTypeSKUTrainingCompleted = "SKUTrainingCompleted"
)

// SKUCreatedEvent is published when a SKU is registered
type SKUCreatedEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	Category string `json:"category"`
}

// NewSKUCreatedEvent creates a new SKUCreatedEvent
func NewSKUCreatedEvent(sku *SKU) *SKUCreatedEvent {
	return &SKUCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSKUCreated, AggregateTypeSKU, sku.ID, sku.TenantID),
		Name:            sku.Name,
		Category:        sku.Category,
	}
}

// SKUTrainingCompletedEvent is published when training finishes for a SKU.
// ActorID identifies who drove the transition; the application layer fills
// it in before publishing since the state machine does not know the caller.
type SKUTrainingCompletedEvent struct {
	shared.BaseDomainEvent
	Name    string    `json:"name"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewSKUTrainingCompletedEvent creates a new SKUTrainingCompletedEvent
func NewSKUTrainingCompletedEvent(sku *SKU) *SKUTrainingCompletedEvent {
	return &SKUTrainingCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSKUTrainingCompleted, AggregateTypeSKU, sku.ID, sku.TenantID),
		Name:            sku.Name,
	}
}
