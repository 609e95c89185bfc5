package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tastreamv1/internal/model"
)

// Client represents a single websocket peer.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	// Guards send against closeSend: the initial-state push runs outside
	// the hub lock, so a disconnect must not close the channel under it.
	sendMu sync.Mutex
	closed bool

	// Subscription filter. Empty = receive everything.
	subMu   sync.RWMutex
	symbols map[string]bool
	names   map[string]bool
}

// enqueue queues a message for the write pump without blocking.
// Returns false if the client is gone or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound channel exactly once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isClosed() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.closed
}

// subscribeMsg is the client → server subscription request.
// Empty lists clear the corresponding filter.
type subscribeMsg struct {
	Type       string   `json:"type"`
	Symbols    []string `json:"symbols"`
	Indicators []string `json:"indicators"`
}

// wants reports whether this client's filters match the update.
func (c *Client) wants(u *model.IndicatorUpdate) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	if len(c.symbols) > 0 && !c.symbols[u.Symbol] {
		return false
	}
	if len(c.names) > 0 && !c.names[u.Name] {
		return false
	}
	return true
}

func (c *Client) sendInitialState() {
	for _, data := range c.hub.latestSnapshot() {
		// Re-tag cached envelopes as initial
		var env envelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		if env.Update != nil && !c.wants(env.Update) {
			continue
		}
		env.Initial = true
		tagged, _ := json.Marshal(env)
		if !c.enqueue(tagged) && c.isClosed() {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			// Write coalescing: use NextWriter to batch queued messages
			// into a single frame with newline separators
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		log.Println("[gateway] ws client disconnected")
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var sub subscribeMsg
		if json.Unmarshal(msg, &sub) != nil {
			continue
		}

		switch sub.Type {
		case "SUBSCRIBE":
			c.setFilters(sub.Symbols, sub.Indicators)
			log.Printf("[gateway] client filter: symbols=%v indicators=%v",
				sub.Symbols, sub.Indicators)
		case "UNSUBSCRIBE":
			c.setFilters(nil, nil)
		}
	}
}

func (c *Client) setFilters(symbols, names []string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.symbols = make(map[string]bool, len(symbols))
	for _, s := range symbols {
		c.symbols[s] = true
	}
	c.names = make(map[string]bool, len(names))
	for _, n := range names {
		c.names[n] = true
	}
}
