package usage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Counter is one usage accounting row: images processed by a tenant in
// one window of one period type. At most one counter per
// (tenant, period type, period start); a new period rolls over to a
// fresh row rather than mutating history. Counters are mutated only
// through the ledger's atomic increment.
type Counter struct {
	shared.BaseEntity
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_counter_window,priority:1"`
	PeriodType      PeriodType `gorm:"type:varchar(10);not null;uniqueIndex:idx_counter_window,priority:2"`
	PeriodStart     time.Time  `gorm:"not null;uniqueIndex:idx_counter_window,priority:3"`
	ImagesProcessed int64      `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "usage_counters"
}

// NewCounter creates a zeroed counter for the window containing now
func NewCounter(tenantID uuid.UUID, periodType PeriodType, now time.Time) (*Counter, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !periodType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD_TYPE", "Unknown period type")
	}

	return &Counter{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		PeriodType:  periodType,
		PeriodStart: PeriodStartFor(periodType, now),
	}, nil
}

// IsCurrent reports whether this counter covers the window containing now
func (c *Counter) IsCurrent(now time.Time) bool {
	return c.PeriodStart.Equal(PeriodStartFor(c.PeriodType, now))
}

// Snapshot is a point-in-time view of a tenant's current-window usage
// across the quota-relevant period types. It is the input to the pure
// quota evaluation and carries no behavior of its own.
type Snapshot struct {
	WeeklyUsage  int64
	MonthlyUsage int64
	YearlyUsage  int64
}
