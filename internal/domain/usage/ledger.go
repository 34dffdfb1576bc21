package usage

import (
	"context"

	"github.com/google/uuid"
)

// Ledger is the per-tenant usage accounting store. Increment must be a
// single atomic read-modify-write against the backing store; callers
// never read-then-write counters themselves.
type Ledger interface {
	// Increment atomically adds count to the current-window counter for
	// (tenantID, periodType), creating the row if the current period has
	// none yet (rollover). idempotencyKey scopes the logical event:
	// a retried increment with the same key for the same window is a
	// no-op, so provider-success-then-retry cannot double count.
	Increment(ctx context.Context, tenantID uuid.UUID, periodType PeriodType, count int64, idempotencyKey string) error

	// Read returns the current window's value, or 0 if no row exists yet
	Read(ctx context.Context, tenantID uuid.UUID, periodType PeriodType) (int64, error)

	// Snapshot reads the weekly, monthly and yearly current-window
	// values in one call for quota evaluation
	Snapshot(ctx context.Context, tenantID uuid.UUID) (Snapshot, error)
}
