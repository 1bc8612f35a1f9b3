// Package stream fans events out from the stores to WebSocket subscribers.
// Any screen holding a subscription sees every mutation as soon as the
// in-memory state changes, regardless of whether the durable write has
// finished.
package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abdulla090/knote/internal/logger"

	"github.com/oklog/ulid/v2"
)

// Subscriber represents a connection that receives events of type T.
type Subscriber[T any] struct {
	Ch   chan T
	Done chan struct{}
}

type connInfo[T any] struct {
	id          ulid.ULID
	connectedAt time.Time
	sub         *Subscriber[T]
}

// Hub manages subscribers and broadcasts events to all of them.
// The system is single-user, so there is one flat bucket of connections.
type Hub[T any] struct {
	mu         sync.RWMutex
	conns      map[ulid.ULID]connInfo[T]
	bufferSize int
	dropped    uint64
}

// NewHub creates a hub with the given per-connection outbox buffer size.
func NewHub[T any](bufferSize int) *Hub[T] {
	return &Hub[T]{
		conns:      make(map[ulid.ULID]connInfo[T]),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a connection and returns its subscriber plus a cancel
// func that unsubscribes it.
func (h *Hub[T]) Subscribe(connID ulid.ULID) (*Subscriber[T], func()) {
	if log := logger.L(); log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connID.String())
	}

	sub := &Subscriber[T]{
		Ch:   make(chan T, h.bufferSize),
		Done: make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[connID] = connInfo[T]{
		id:          connID,
		connectedAt: time.Now(),
		sub:         sub,
	}
	h.mu.Unlock()

	cancel := func() {
		h.Unsubscribe(connID)
	}
	return sub, cancel
}

// Unsubscribe removes a connection and closes its channels. Unknown ids are
// ignored so a cancel func may run after an explicit unsubscribe.
func (h *Hub[T]) Unsubscribe(connID ulid.ULID) {
	h.mu.Lock()
	info, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	if log := logger.L(); log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribed connection", "conn_id", connID.String())
	}

	close(info.sub.Ch)
	close(info.sub.Done)
}

// Broadcast delivers ev to every subscriber. Slow consumers never block a
// store operation: when an outbox is full the event is dropped and counted.
func (h *Hub[T]) Broadcast(_ context.Context, ev T) {
	log := logger.L()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, info := range h.conns {
		sendOrDrop(info.sub.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
			if log != nil {
				log.Warn("outbox full, dropping event", "conn_id", info.id.String())
			}
		})
	}
}

// SubscriberCount returns the current number of subscribers.
func (h *Hub[T]) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Stats returns subscriber and dropped-event counters for observability.
func (h *Hub[T]) Stats() (subscribers int, dropped uint64) {
	return h.SubscriberCount(), atomic.LoadUint64(&h.dropped)
}

// sendOrDrop is the only place allowed to decide to drop an event.
func sendOrDrop[T any](ch chan T, ev T, onDrop func()) {
	select {
	case ch <- ev:
	default:
		onDrop()
	}
}
