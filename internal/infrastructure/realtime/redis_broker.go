package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shelfsight/backend/internal/domain/notification"
	"go.uber.org/zap"
)

const (
	defaultChannel      = "shelfsight:notifications"
	defaultCloseTimeout = 5 * time.Second
)

// RedisBroker fans notifications out across instances over Redis
// Pub/Sub. Every instance publishes to one shared channel and routes
// received messages to its own local subscribers, so a user connected
// to any instance gets the push.
type RedisBroker struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	registry   *subscriberRegistry
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisBrokerOption configures a RedisBroker
type RedisBrokerOption func(*RedisBroker)

// WithBrokerChannel overrides the Pub/Sub channel name
func WithBrokerChannel(channel string) RedisBrokerOption {
	return func(b *RedisBroker) {
		b.channel = channel
	}
}

// WithBrokerLogger sets the broker's logger
func WithBrokerLogger(logger *zap.Logger) RedisBrokerOption {
	return func(b *RedisBroker) {
		b.logger = logger
	}
}

// NewRedisBroker connects to Redis and returns a broker that owns its
// client
func NewRedisBroker(host string, port int, password string, db int, opts ...RedisBrokerOption) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	broker := &RedisBroker{
		client:     client,
		ownsClient: true,
		channel:    defaultChannel,
		registry:   newSubscriberRegistry(),
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broker)
	}

	return broker, nil
}

// NewRedisBrokerWithClient wraps an existing Redis client. The caller
// retains ownership and is responsible for closing it.
func NewRedisBrokerWithClient(client *redis.Client, opts ...RedisBrokerOption) *RedisBroker {
	broker := &RedisBroker{
		client:     client,
		ownsClient: false,
		channel:    defaultChannel,
		registry:   newSubscriberRegistry(),
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broker)
	}

	return broker
}

// Publish broadcasts the notification on the shared channel. Local
// subscribers receive it through the Run loop like any other instance.
func (b *RedisBroker) Publish(ctx context.Context, n *notification.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		b.logger.Error("failed to marshal notification",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("failed to publish notification",
			zap.String("channel", b.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe registers a live callback for the user on this instance
func (b *RedisBroker) Subscribe(userID uuid.UUID, fn func(n *notification.Notification)) notification.UnsubscribeFunc {
	return b.registry.add(userID, fn)
}

// Run consumes the shared channel and routes each notification to this
// instance's subscribers for its user. Blocks until ctx is cancelled;
// call it in a goroutine.
func (b *RedisBroker) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return fmt.Errorf("broker already running")
	}
	b.isRunning = true
	b.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancelFn = cancel
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(subCtx); err != nil {
		b.mu.Lock()
		b.isRunning = false
		b.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Info("subscribed to notification channel",
		zap.String("channel", b.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			b.logger.Info("notification subscription stopped")
			b.mu.Lock()
			b.isRunning = false
			b.mu.Unlock()
			b.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("notification channel closed")
				b.mu.Lock()
				b.isRunning = false
				b.mu.Unlock()
				b.markDone()
				return nil
			}

			var n notification.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Error("failed to unmarshal notification",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			b.dispatch(&n)
		}
	}
}

// dispatch invokes local callbacks for the notification's user, each
// on its own goroutine so a slow consumer cannot stall the loop
func (b *RedisBroker) dispatch(n *notification.Notification) {
	for _, fn := range b.registry.callbacksFor(n.UserID) {
		go func(fn func(n *notification.Notification)) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("panic in notification subscriber",
						zap.String("notification_id", n.ID.String()),
						zap.Any("panic", r))
				}
			}()
			fn(n)
		}(fn)
	}
}

func (b *RedisBroker) markDone() {
	b.doneOnce.Do(func() {
		close(b.doneCh)
	})
}

// Close stops the Run loop and, when the broker owns the client,
// closes it
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	cancelFn := b.cancelFn
	b.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-b.doneCh:
		case <-time.After(defaultCloseTimeout):
			b.logger.Warn("timeout waiting for subscription to stop")
		}
	}

	if b.ownsClient {
		return b.client.Close()
	}
	return nil
}

var _ notification.Broker = (*RedisBroker)(nil)
