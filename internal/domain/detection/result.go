package detection

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Result is the durable record of one processed shelf image. It is
// immutable once created; history endpoints read it back verbatim.
type Result struct {
	shared.TenantAggregateRoot
	ImageReference string
	StoreID        *uuid.UUID
	Matches        []SKUMatch
	MissingSKUs    []CandidateSKU
	ShareOfShelf   ShareOfShelf
	Summary        string
}

// NewResult wraps a finished aggregation into a persistable record
func NewResult(tenantID uuid.UUID, imageReference string, storeID *uuid.UUID, agg Aggregation) (*Result, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(imageReference) == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE_REFERENCE", "Image reference cannot be empty")
	}

	result := &Result{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ImageReference:      imageReference,
		StoreID:             storeID,
		Matches:             agg.Matches,
		MissingSKUs:         agg.MissingSKUs,
		ShareOfShelf:        agg.ShareOfShelf,
		Summary:             agg.Summary,
	}

	result.AddDomainEvent(NewDetectionCompletedEvent(result))

	return result, nil
}

// MatchedCount returns the number of candidate SKUs found on the shelf
func (r *Result) MatchedCount() int {
	return len(r.Matches)
}

// MissingCount returns the number of candidate SKUs not found
func (r *Result) MissingCount() int {
	return len(r.MissingSKUs)
}
