package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/notification"
	"github.com/shelfsight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EmitInput describes one notification to dispatch
type EmitInput struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Type     notification.Type
	Title    string
	Message  string
	Metadata map[string]any

	// DedupeKey, when set, suppresses repeat emissions for the same
	// logical event within the idempotency TTL. Retried event handling
	// then creates at most one record.
	DedupeKey string
}

// Dispatcher creates durable notification records and fans them out
// over the live push channel. The record is the source of truth: push
// delivery is best effort and never fails the emit.
type Dispatcher struct {
	repo           notification.Repository
	broker         notification.Broker
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	repo notification.Repository,
	broker notification.Broker,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:           repo,
		broker:         broker,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger,
	}
}

// Emit creates exactly one durable notification and pushes it to any
// live subscriber of the target user. A duplicate DedupeKey within the
// TTL returns (nil, nil) without creating anything.
func (d *Dispatcher) Emit(ctx context.Context, input EmitInput) (*notification.Notification, error) {
	if input.DedupeKey != "" && d.idempotency != nil && d.idempotencyCfg.Enabled {
		fresh, err := d.idempotency.MarkProcessed(ctx, "notify:"+input.DedupeKey, d.idempotencyCfg.TTL)
		if err != nil {
			// Losing dedup protection is better than losing the event
			d.logger.Warn("Idempotency store unavailable, emitting without dedup",
				zap.String("dedupe_key", input.DedupeKey),
				zap.Error(err))
		} else if !fresh {
			d.logger.Debug("Duplicate notification suppressed",
				zap.String("dedupe_key", input.DedupeKey))
			return nil, nil
		}
	}

	n, err := notification.NewNotification(input.UserID, input.TenantID, input.Type, input.Title, input.Message, input.Metadata)
	if err != nil {
		return nil, err
	}

	if err := d.repo.Save(ctx, n); err != nil {
		d.logger.Error("Failed to persist notification",
			zap.String("user_id", input.UserID.String()),
			zap.String("type", input.Type.String()),
			zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to persist notification")
	}

	if d.broker != nil {
		go func() {
			pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if pushErr := d.broker.Publish(pushCtx, n); pushErr != nil {
				d.logger.Warn("Live notification delivery failed",
					zap.String("notification_id", n.ID.String()),
					zap.Error(pushErr))
			}
		}()
	}

	return n, nil
}

// List returns the user's notifications newest-first
func (d *Dispatcher) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*notification.Notification], error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "User ID cannot be empty")
	}
	result, err := d.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrCodeStore, "Failed to list notifications")
	}
	return result, nil
}

// UnreadCount counts the user's unread notifications from the stored
// rows; there is no separately maintained counter to drift
func (d *Dispatcher) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, shared.NewDomainError(shared.ErrCodeValidation, "User ID cannot be empty")
	}
	count, err := d.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, shared.NewDomainError(shared.ErrCodeStore, "Failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one notification as read. Marking twice is a no-op.
func (d *Dispatcher) MarkRead(ctx context.Context, id uuid.UUID) error {
	n, err := d.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrNotFound
		}
		return shared.NewDomainError(shared.ErrCodeStore, "Failed to load notification")
	}
	if n.Read {
		return nil
	}
	n.MarkRead(time.Now())
	if err := d.repo.Save(ctx, n); err != nil {
		return shared.NewDomainError(shared.ErrCodeStore, "Failed to update notification")
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
// Calling it again immediately is a no-op.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError(shared.ErrCodeValidation, "User ID cannot be empty")
	}
	if err := d.repo.MarkAllRead(ctx, userID); err != nil {
		return shared.NewDomainError(shared.ErrCodeStore, "Failed to mark notifications read")
	}
	return nil
}

// Subscribe attaches a live listener for the user and returns the
// handle that detaches it
func (d *Dispatcher) Subscribe(userID uuid.UUID, fn func(n *notification.Notification)) notification.UnsubscribeFunc {
	return d.broker.Subscribe(userID, fn)
}
