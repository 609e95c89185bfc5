// Package gateway exposes the indicator update stream to websocket clients.
// The hub fans updates from the in-process bus out to connected clients,
// keeping a latest-value cache so a fresh client gets current state
// immediately after connecting.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"tastreamv1/internal/model"
)

// Hub manages websocket clients and update fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]json.RawMessage // key = update.Key()

	// OnClientCountChange is called with the new client count (for metrics).
	OnClientCountChange func(count int)
}

// NewHub creates a Hub with no clients.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		latest:  make(map[string]json.RawMessage),
	}
}

// envelope is the wire format sent to websocket clients.
type envelope struct {
	Type    string                 `json:"type"`
	Update  *model.IndicatorUpdate `json:"update"`
	Initial bool                   `json:"initial,omitempty"`
}

// Run consumes updates from the bus subscription and broadcasts them.
// Blocks until ctx is cancelled or the channel is closed.
func (h *Hub) Run(ctx context.Context, updates <-chan *model.IndicatorUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			h.broadcast(u)
		}
	}
}

func (h *Hub) broadcast(u *model.IndicatorUpdate) {
	data, err := json.Marshal(envelope{Type: "update", Update: u})
	if err != nil {
		log.Printf("[gateway] marshal error for %s: %v", u.Key(), err)
		return
	}

	h.mu.Lock()
	h.latest[u.Key()] = data
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wants(u) {
			continue
		}
		// drops rather than blocking the hub on a slow client
		client.enqueue(data)
	}
}

// AddClient registers a client and starts its pumps.
func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)
	if h.OnClientCountChange != nil {
		h.OnClientCountChange(count)
	}

	go c.sendInitialState()
	go c.writePump()
	go c.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.closeSend()
	if h.OnClientCountChange != nil {
		h.OnClientCountChange(count)
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// latestSnapshot copies the latest-value cache.
func (h *Hub) latestSnapshot() []json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snap := make([]json.RawMessage, 0, len(h.latest))
	for _, data := range h.latest {
		snap = append(snap, data)
	}
	return snap
}

// StartStatsBroadcast sends hub statistics to all clients every interval.
func (h *Hub) StartStatsBroadcast(ctx context.Context, start time.Time, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.mu.RLock()
				stats, _ := json.Marshal(map[string]interface{}{
					"type":    "stats",
					"clients": len(h.clients),
					"series":  len(h.latest),
					"uptime":  time.Since(start).Round(time.Second).String(),
				})
				for client := range h.clients {
					client.enqueue(stats)
				}
				h.mu.RUnlock()
			}
		}
	}()
}
