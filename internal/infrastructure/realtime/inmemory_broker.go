package realtime

import (
	"context"

	"github.com/shelfsight/backend/internal/domain/notification"
	"go.uber.org/zap"

	"github.com/google/uuid"
)

// InMemoryBroker delivers notifications to subscribers in the same
// process. Suitable for single-instance deployments and tests.
type InMemoryBroker struct {
	registry *subscriberRegistry
	logger   *zap.Logger
}

// NewInMemoryBroker creates an in-process notification broker
func NewInMemoryBroker(logger *zap.Logger) *InMemoryBroker {
	return &InMemoryBroker{
		registry: newSubscriberRegistry(),
		logger:   logger,
	}
}

// Publish pushes the notification to every live subscriber of its
// user. Callbacks run on the caller's goroutine; a panicking callback
// is logged and does not affect the others.
func (b *InMemoryBroker) Publish(ctx context.Context, n *notification.Notification) error {
	for _, fn := range b.registry.callbacksFor(n.UserID) {
		b.invoke(fn, n)
	}
	return nil
}

// Subscribe registers a live callback for the user
func (b *InMemoryBroker) Subscribe(userID uuid.UUID, fn func(n *notification.Notification)) notification.UnsubscribeFunc {
	return b.registry.add(userID, fn)
}

// SubscriberCount returns the number of live subscriptions for a user
func (b *InMemoryBroker) SubscriberCount(userID uuid.UUID) int {
	return b.registry.count(userID)
}

func (b *InMemoryBroker) invoke(fn func(n *notification.Notification), n *notification.Notification) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in notification subscriber",
				zap.String("notification_id", n.ID.String()),
				zap.Any("panic", r))
		}
	}()
	fn(n)
}

var _ notification.Broker = (*InMemoryBroker)(nil)
