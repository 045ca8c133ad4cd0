package broadcaster

import (
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

const DefaultCapacity = 4

// Hub is a single broadcast channel. Every message published is offered to
// every subscription open at that moment; a subscription that falls more than
// its capacity behind loses its oldest pending messages instead of slowing the
// publisher down.
type Hub struct {
	logger   *zap.Logger
	capacity int

	mu            sync.RWMutex
	subscriptions map[string]*Subscription

	published atomic.Uint64
}

func NewHub(logger *zap.Logger, capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Hub{
		logger:        logger,
		capacity:      capacity,
		subscriptions: make(map[string]*Subscription),
	}
}

// Publish never blocks on subscribers.
func (h *Hub) Publish(message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.published.Add(1)

	for _, subscription := range h.subscriptions {
		subscription.push(message)
	}
}

func (h *Hub) Subscribe() *Subscription {
	subscription := newSubscription(xid.New().String(), h, h.capacity)

	h.mu.Lock()
	h.subscriptions[subscription.Id] = subscription
	h.mu.Unlock()

	h.logger.Debug("subscription opened", zap.String("subscriptionId", subscription.Id))

	return subscription
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscriptions)
}

// Published returns the number of messages published since the hub was created.
func (h *Hub) Published() uint64 {
	return h.published.Load()
}

func (h *Hub) unsubscribe(subscriptionId string) {
	h.mu.Lock()
	delete(h.subscriptions, subscriptionId)
	h.mu.Unlock()

	h.logger.Debug("subscription closed", zap.String("subscriptionId", subscriptionId))
}
