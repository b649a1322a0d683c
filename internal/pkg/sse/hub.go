package sse

import (
	"sync"
)

// Event is one server-sent event
type Event struct {
	Name string
	Data any
}

// Hub broadcasts events to every connected subscriber
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel and cleanup function
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	h.subscribers[ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, ch)
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers. Slow subscribers miss events
// instead of blocking the publisher. A nil hub drops the event.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
