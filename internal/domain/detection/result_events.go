package detection

import (
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeDetectionResult = "DetectionResult"

// Event type constants
const (
	EventTypeDetectionCompleted = "DetectionCompleted"
)

// DetectionCompletedEvent is published when an image has been fully
// processed and its result persisted
type DetectionCompletedEvent struct {
	shared.BaseDomainEvent
	ImageReference string  `json:"image_reference"`
	MatchedCount   int     `json:"matched_count"`
	MissingCount   int     `json:"missing_count"`
	ShelfShare     float64 `json:"shelf_share"`
	Summary        string  `json:"summary"`
}

// NewDetectionCompletedEvent creates a new DetectionCompletedEvent
func NewDetectionCompletedEvent(result *Result) *DetectionCompletedEvent {
	return &DetectionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDetectionCompleted, AggregateTypeDetectionResult, result.ID, result.TenantID),
		ImageReference:  result.ImageReference,
		MatchedCount:    result.MatchedCount(),
		MissingCount:    result.MissingCount(),
		ShelfShare:      result.ShareOfShelf.Percentage,
		Summary:         result.Summary,
	}
}
