package detection

import (
	"context"
	"fmt"

	"github.com/shelfsight/backend/internal/domain/detection"
)

// Provider is the external detection service. It receives an image
// reference and returns the provider's opaque detection list. Calls
// are metered and paid for, so callers must quota-gate before
// invoking and apply a timeout.
type Provider interface {
	Detect(ctx context.Context, imageReference string) ([]detection.RawDetection, error)
}

// ProviderError carries the provider's status and message for a failed
// detection call. It is surfaced as a PROVIDER_ERROR, never as an
// empty detection list.
type ProviderError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("detection provider returned status %d: %s", e.StatusCode, e.Message)
	}
	return "detection provider unavailable: " + e.Message
}
