package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tastreamv1/internal/model"
)

func newTestClient(hub *Hub) *Client {
	c := &Client{
		hub:  hub,
		send: make(chan []byte, 16),
	}
	hub.mu.Lock()
	hub.clients[c] = true
	hub.mu.Unlock()
	return c
}

func recvEnvelope(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for envelope")
		return envelope{}
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(hub)
	c2 := newTestClient(hub)

	hub.broadcast(&model.IndicatorUpdate{
		Name:   "EMA(9)",
		Symbol: "INFY",
		Value:  decimal.NewFromInt(1540),
		Warm:   true,
	})

	for _, c := range []*Client{c1, c2} {
		env := recvEnvelope(t, c)
		if env.Type != "update" || env.Update.Name != "EMA(9)" {
			t.Errorf("unexpected envelope: %+v", env)
		}
	}
}

func TestHub_ClientFilters(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub)
	c.setFilters([]string{"INFY"}, []string{"EMA(9)"})

	hub.broadcast(&model.IndicatorUpdate{Name: "SMA(9)", Symbol: "INFY"})
	hub.broadcast(&model.IndicatorUpdate{Name: "EMA(9)", Symbol: "TCS"})
	hub.broadcast(&model.IndicatorUpdate{Name: "EMA(9)", Symbol: "INFY"})

	env := recvEnvelope(t, c)
	if env.Update.Name != "EMA(9)" || env.Update.Symbol != "INFY" {
		t.Errorf("filter let through %s:%s", env.Update.Name, env.Update.Symbol)
	}
	if len(c.send) != 0 {
		t.Errorf("expected exactly one delivered update, %d queued", len(c.send))
	}
}

func TestHub_LatestCacheServedAsInitial(t *testing.T) {
	hub := NewHub()

	hub.broadcast(&model.IndicatorUpdate{Name: "OBV", Symbol: "INFY", Value: decimal.NewFromInt(5000)})
	hub.broadcast(&model.IndicatorUpdate{Name: "OBV", Symbol: "INFY", Value: decimal.NewFromInt(7000)})

	c := newTestClient(hub)
	c.sendInitialState()

	env := recvEnvelope(t, c)
	if !env.Initial {
		t.Error("expected initial envelope")
	}
	if env.Update.Value.String() != "7000" {
		t.Errorf("latest cache should hold newest value, got %s", env.Update.Value)
	}
}

func TestHub_InitialStateAfterDisconnect(t *testing.T) {
	hub := NewHub()
	hub.broadcast(&model.IndicatorUpdate{Name: "SMA(9)", Symbol: "INFY", Value: decimal.NewFromInt(100)})

	c := newTestClient(hub)
	hub.RemoveClient(c)

	// The send channel is closed; the snapshot push must bail out, not panic.
	c.sendInitialState()
}

func TestHub_ConcurrentRemoveDuringInitialState(t *testing.T) {
	for i := 0; i < 200; i++ {
		hub := NewHub()
		hub.broadcast(&model.IndicatorUpdate{Name: "SMA(9)", Symbol: "INFY"})
		hub.broadcast(&model.IndicatorUpdate{Name: "EMA(9)", Symbol: "INFY"})
		hub.broadcast(&model.IndicatorUpdate{Name: "OBV", Symbol: "TCS"})

		c := newTestClient(hub)
		done := make(chan struct{})
		go func() {
			c.sendInitialState()
			close(done)
		}()
		hub.RemoveClient(c)
		<-done
	}
}

func TestHub_RemoveClientIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub)

	hub.RemoveClient(c)
	hub.RemoveClient(c) // second removal must not close twice

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}
