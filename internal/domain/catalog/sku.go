package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// TrainingStatus represents where a SKU sits in the recognition
// training pipeline. Transitions only move forward; a SKU never
// returns to pending.
type TrainingStatus string

const (
	TrainingStatusPending   TrainingStatus = "pending"
	TrainingStatusTraining  TrainingStatus = "training"
	TrainingStatusCompleted TrainingStatus = "completed"
	TrainingStatusFailed    TrainingStatus = "failed"
)

// IsValid returns true if the training status is a known value
func (s TrainingStatus) IsValid() bool {
	switch s {
	case TrainingStatusPending, TrainingStatusTraining, TrainingStatusCompleted, TrainingStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of TrainingStatus
func (s TrainingStatus) String() string {
	return string(s)
}

// allowedTrainingTransitions maps each status to the statuses it may
// move to. Failed SKUs may be retrained; nothing goes back to pending.
var allowedTrainingTransitions = map[TrainingStatus][]TrainingStatus{
	TrainingStatusPending:   {TrainingStatusTraining},
	TrainingStatusTraining:  {TrainingStatusCompleted, TrainingStatusFailed},
	TrainingStatusFailed:    {TrainingStatusTraining},
	TrainingStatusCompleted: {},
}

// SKU is a registered product the system is trained to recognize on
// shelf images. Every SKU counts toward its tenant's SKU quota
// regardless of training status.
type SKU struct {
	shared.TenantAggregateRoot
	Name           string         `gorm:"type:varchar(200);not null"`
	Category       string         `gorm:"type:varchar(100);not null;index"`
	TrainingStatus TrainingStatus `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (SKU) TableName() string {
	return "skus"
}

// NewSKU creates a new SKU in pending training status
func NewSKU(tenantID uuid.UUID, name, category string) (*SKU, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "SKU name cannot be empty")
	}
	if strings.TrimSpace(category) == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "SKU category cannot be empty")
	}

	sku := &SKU{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Category:            category,
		TrainingStatus:      TrainingStatusPending,
	}

	sku.AddDomainEvent(NewSKUCreatedEvent(sku))

	return sku, nil
}

// TransitionTraining moves the SKU to the next training status,
// enforcing the forward-only state machine
func (s *SKU) TransitionTraining(next TrainingStatus) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown training status")
	}
	for _, allowed := range allowedTrainingTransitions[s.TrainingStatus] {
		if next == allowed {
			s.TrainingStatus = next
			s.UpdatedAt = time.Now().UTC()
			if next == TrainingStatusCompleted {
				s.AddDomainEvent(NewSKUTrainingCompletedEvent(s))
			}
			return nil
		}
	}
	return shared.NewDomainError("INVALID_TRANSITION",
		"Training status cannot move from "+string(s.TrainingStatus)+" to "+string(next))
}

// IsTrained returns true when the SKU can be matched in detections
func (s *SKU) IsTrained() bool {
	return s.TrainingStatus == TrainingStatusCompleted
}

// Rename updates the SKU display name
func (s *SKU) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "SKU name cannot be empty")
	}
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}
