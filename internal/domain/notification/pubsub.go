package notification

import (
	"context"

	"github.com/google/uuid"
)

// UnsubscribeFunc detaches a live subscription. Safe to call more
// than once.
type UnsubscribeFunc func()

// Publisher pushes a freshly created notification to any live
// listeners for its user. Delivery is best effort and fire-and-forget;
// the durable record is the source of truth, so publish failures never
// fail the originating operation.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

// Subscriber hands out live subscriptions keyed by user. Callers hold
// the returned handle; there is no implicit global listener set.
type Subscriber interface {
	Subscribe(userID uuid.UUID, fn func(n *Notification)) UnsubscribeFunc
}

// Broker is a combined live push channel. Concrete transports live in
// infrastructure; the dispatcher depends only on this interface.
type Broker interface {
	Publisher
	Subscriber
}
