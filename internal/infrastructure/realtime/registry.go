package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/notification"
)

// subscriberRegistry tracks live per-user callbacks. Both brokers use
// it for local fan-out; the Redis broker feeds it from the pub/sub
// channel instead of directly from Publish.
type subscriberRegistry struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uuid.UUID]map[int]func(n *notification.Notification)
}

func newSubscriberRegistry() *subscriberRegistry {
	return &subscriberRegistry{
		subs: make(map[uuid.UUID]map[int]func(n *notification.Notification)),
	}
}

// add registers a callback for the user and returns a detach function
// that is safe to call more than once
func (r *subscriberRegistry) add(userID uuid.UUID, fn func(n *notification.Notification)) notification.UnsubscribeFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID

	if r.subs[userID] == nil {
		r.subs[userID] = make(map[int]func(n *notification.Notification))
	}
	r.subs[userID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs[userID], id)
			if len(r.subs[userID]) == 0 {
				delete(r.subs, userID)
			}
		})
	}
}

// callbacksFor returns a snapshot of the user's callbacks
func (r *subscriberRegistry) callbacksFor(userID uuid.UUID) []func(n *notification.Notification) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fns := make([]func(n *notification.Notification), 0, len(r.subs[userID]))
	for _, fn := range r.subs[userID] {
		fns = append(fns, fn)
	}
	return fns
}

// count returns the number of live subscriptions for the user
func (r *subscriberRegistry) count(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[userID])
}
