// Package notifier broadcasts committed placements to connected viewers.
// The hub is the in-process realization of the change-notification
// channel: the admission path publishes fire-and-forget, viewers
// subscribe through the WebSocket transport. A lagging viewer that
// misses events recovers by re-hydrating the full grid.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pixelboard/internal/logging"
)

// PlacementCommittedEvent is the wire shape of a committed placement
// delivered to subscribers.
type PlacementCommittedEvent struct {
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Color    string    `json:"color"`
	UserID   string    `json:"user_id"`
	PlacedAt time.Time `json:"placed_at"`
}

// Hub fans committed-placement events out to subscribers. Publish never
// blocks the admission path: a subscriber whose buffer is full is
// dropped and must re-hydrate.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan PlacementCommittedEvent]struct{}
	buffer      int
	logger      logging.Logger
}

// NewHub constructs a hub; buffer is the per-subscriber channel depth.
func NewHub(buffer int, logger logging.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan PlacementCommittedEvent]struct{}),
		buffer:      buffer,
		logger:      logger.With("module", "notifier"),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (h *Hub) Subscribe() chan PlacementCommittedEvent {
	ch := make(chan PlacementCommittedEvent, h.buffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan PlacementCommittedEvent) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber without blocking.
// Slow subscribers lose the event; durability of the placement itself
// outranks real-time delivery.
func (h *Hub) Publish(ctx context.Context, event PlacementCommittedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.logger.Warn(ctx, "subscriber buffer full, dropping event",
				"x", event.X, "y", event.Y)
		}
	}
}

// SubscriberCount reports the current number of subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
