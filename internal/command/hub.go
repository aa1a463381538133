package command

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/signalsfoundry/spectrum-sim/core"
	"github.com/signalsfoundry/spectrum-sim/internal/logging"
	"github.com/signalsfoundry/spectrum-sim/model"
)

// Hub fans simulation output out to subscribed render clients. It implements
// core.CoverageSink so coverage descriptor lifecycle events stream to
// clients as they happen; full state snapshots go out after every tick.
type Hub struct {
	log logging.Logger

	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub creates an empty hub.
func NewHub(log logging.Logger) *Hub {
	if log == nil {
		log = logging.Noop()
	}
	return &Hub{
		log:         log,
		subscribers: make(map[uint64]*subscriber),
	}
}

// Subscribe registers a WebSocket connection and returns its subscriber ID.
// A non-empty seed payload is written first, while the connection is still
// private to this call: once the subscriber is registered, all writes must
// go through its mutex, and a broadcast on another goroutine may race a
// direct write on the raw connection.
func (h *Hub) Subscribe(conn *websocket.Conn, seed []byte) (uint64, error) {
	if len(seed) > 0 {
		if err := conn.WriteMessage(websocket.TextMessage, seed); err != nil {
			conn.Close()
			return 0, err
		}
	}
	id := h.nextID.Add(1)
	h.mu.Lock()
	h.subscribers[id] = &subscriber{conn: conn}
	h.mu.Unlock()
	return id, nil
}

// Unsubscribe removes and closes a subscriber.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// Broadcast sends a JSON message to every subscriber. Subscribers whose
// writes fail are dropped.
func (h *Hub) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error(context.Background(), "marshal broadcast", logging.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	subs := make(map[uint64]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.Unsubscribe(id)
		}
	}
}

// UpsertCoverage implements core.CoverageSink.
func (h *Hub) UpsertCoverage(desc core.CoverageDescriptor) {
	h.Broadcast(coverageMessage{Type: "coverage_upsert", Descriptor: &desc})
}

// RemoveCoverage implements core.CoverageSink.
func (h *Hub) RemoveCoverage(id model.EntityID) {
	h.Broadcast(coverageMessage{Type: "coverage_removed", Entity: id})
}
