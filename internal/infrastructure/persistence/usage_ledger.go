package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/domain/usage"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUsageLedger implements usage.Ledger using GORM.
//
// Increments are a single upsert: insert a fresh counter for the
// current window, or add to the existing row on conflict with the
// (tenant_id, period_type, period_start) unique index. The addition
// happens in SQL, so concurrent increments never lose updates and
// period rollover needs no scheduled job.
type GormUsageLedger struct {
	db          *gorm.DB
	idempotency shared.IdempotencyStore
	ttl         time.Duration
	logger      *zap.Logger
}

// LedgerOption configures a GormUsageLedger
type LedgerOption func(*GormUsageLedger)

// WithLedgerIdempotencyStore enables idempotent increments backed by
// the given store. Without a store, retried increments double count.
func WithLedgerIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) LedgerOption {
	return func(l *GormUsageLedger) {
		l.idempotency = store
		l.ttl = cfg.TTL
	}
}

// WithLedgerLogger sets the logger
func WithLedgerLogger(logger *zap.Logger) LedgerOption {
	return func(l *GormUsageLedger) {
		l.logger = logger
	}
}

// NewGormUsageLedger creates a new GormUsageLedger
func NewGormUsageLedger(db *gorm.DB, opts ...LedgerOption) *GormUsageLedger {
	ledger := &GormUsageLedger{
		db:     db,
		ttl:    shared.DefaultIdempotencyConfig().TTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ledger)
	}
	return ledger
}

// Increment atomically adds count to the current-window counter for
// (tenantID, periodType), creating the row on first use of a window.
// A retried increment with the same non-empty idempotencyKey is a
// no-op.
func (l *GormUsageLedger) Increment(ctx context.Context, tenantID uuid.UUID, periodType usage.PeriodType, count int64, idempotencyKey string) error {
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !periodType.IsValid() {
		return shared.NewDomainError("INVALID_PERIOD_TYPE", "Unknown period type")
	}
	if count <= 0 {
		return shared.NewDomainError("INVALID_COUNT", "Increment count must be positive")
	}

	if idempotencyKey != "" && l.idempotency != nil {
		firstSeen, err := l.idempotency.MarkProcessed(ctx, idempotencyKey, l.ttl)
		if err != nil {
			// An unreachable store must not block metering. Counting a
			// retried event twice is preferable to not counting at all.
			l.logger.Warn("idempotency store unavailable, incrementing anyway",
				zap.String("key", idempotencyKey),
				zap.Error(err))
		} else if !firstSeen {
			l.logger.Debug("duplicate increment skipped",
				zap.String("tenant_id", tenantID.String()),
				zap.String("period_type", periodType.String()),
				zap.String("key", idempotencyKey))
			return nil
		}
	}

	now := time.Now().UTC()
	counter, err := usage.NewCounter(tenantID, periodType, now)
	if err != nil {
		return err
	}
	counter.ImagesProcessed = count

	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "period_type"},
			{Name: "period_start"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"images_processed": gorm.Expr("images_processed + ?", count),
			"updated_at":       now,
		}),
	}).Create(counter).Error
}

// Read returns the current window's value for (tenantID, periodType),
// or 0 if no counter row exists yet
func (l *GormUsageLedger) Read(ctx context.Context, tenantID uuid.UUID, periodType usage.PeriodType) (int64, error) {
	if !periodType.IsValid() {
		return 0, shared.NewDomainError("INVALID_PERIOD_TYPE", "Unknown period type")
	}

	periodStart := usage.PeriodStartFor(periodType, time.Now().UTC())

	var counter usage.Counter
	err := l.db.WithContext(ctx).
		Where("tenant_id = ? AND period_type = ? AND period_start = ?", tenantID, periodType, periodStart).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.ImagesProcessed, nil
}

// Snapshot reads the weekly, monthly and yearly current-window values
// in one query. Missing rows read as zero, so a tenant's first request
// of a period sees fresh counters.
func (l *GormUsageLedger) Snapshot(ctx context.Context, tenantID uuid.UUID) (usage.Snapshot, error) {
	now := time.Now().UTC()

	var counters []usage.Counter
	err := l.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(
			"(period_type = ? AND period_start = ?) OR (period_type = ? AND period_start = ?) OR (period_type = ? AND period_start = ?)",
			usage.PeriodWeekly, usage.PeriodStartFor(usage.PeriodWeekly, now),
			usage.PeriodMonthly, usage.PeriodStartFor(usage.PeriodMonthly, now),
			usage.PeriodYearly, usage.PeriodStartFor(usage.PeriodYearly, now),
		).
		Find(&counters).Error
	if err != nil {
		return usage.Snapshot{}, err
	}

	var snapshot usage.Snapshot
	for _, c := range counters {
		switch c.PeriodType {
		case usage.PeriodWeekly:
			snapshot.WeeklyUsage = c.ImagesProcessed
		case usage.PeriodMonthly:
			snapshot.MonthlyUsage = c.ImagesProcessed
		case usage.PeriodYearly:
			snapshot.YearlyUsage = c.ImagesProcessed
		}
	}
	return snapshot, nil
}
