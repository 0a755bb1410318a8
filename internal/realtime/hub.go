package realtime

import (
	"sync"

	"pos-service/internal/util"

	"go.uber.org/zap"
)

const defaultQueueSize = 256

// Hub is the process-wide fan-out point. Publishers push committed change
// envelopes in; every active subscription receives its own FIFO delivery
// queue. Delivery is at-most-once and best-effort: a subscriber whose queue
// is full is skipped for that envelope, the publisher never blocks.
//
// The hub is constructed once at startup and handed to every command
// handler and connection acceptor; it lives for the process lifetime and
// has no teardown.
type Hub struct {
	mu        sync.RWMutex
	subs      map[*Subscription]struct{}
	cache     *Cache
	queueSize int
	logger    *zap.Logger
}

// NewHub creates a hub whose subscriptions buffer up to queueSize envelopes.
// A queueSize of 0 selects the default.
func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{
		subs:      make(map[*Subscription]struct{}),
		cache:     NewCache(),
		queueSize: queueSize,
		logger:    util.GetLogger(),
	}
}

// Publish fans the envelope out to every current subscription. It never
// blocks: subscribers with a saturated queue miss this envelope. Failures
// are not reported to the caller.
func (h *Hub) Publish(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Applied under the same lock as the fan-out so the snapshot handed to
	// a new subscriber is never ahead of the deliveries it will receive.
	h.cache.Apply(change)

	util.ChangesPublishedTotal.WithLabelValues(change.ResourceType, change.Op).Inc()

	for sub := range h.subs {
		select {
		case sub.ch <- change:
		default:
			util.ChangesDroppedTotal.Inc()
			h.logger.Debug("subscriber queue full, envelope dropped",
				zap.String("resource_type", change.ResourceType),
				zap.String("op", change.Op))
		}
	}
}

// Subscribe registers a fresh delivery queue. The subscription only sees
// envelopes published after this call; there is no replay buffer.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ch:  make(chan Change, h.queueSize),
		hub: h,
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	total := len(h.subs)
	h.mu.Unlock()

	util.SubscribersGauge.Set(float64(total))
	return sub
}

// Snapshot returns the current resource state as a sequence of Add
// envelopes, used for the full-state handshake on (re)connect.
func (h *Hub) Snapshot() []Change {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cache.Changes()
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	total := len(h.subs)
	h.mu.Unlock()

	util.SubscribersGauge.Set(float64(total))
}

// Subscription is one subscriber's bounded FIFO delivery queue.
type Subscription struct {
	ch   chan Change
	hub  *Hub
	once sync.Once
}

// C returns the delivery channel. It is closed when the subscription is
// closed; receivers must stop reading then.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// Close detaches the subscription from the hub and closes the delivery
// channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}
