package bus

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tastreamv1/internal/model"
)

func TestFanOut_BroadcastsToAll(t *testing.T) {
	fo := New(10)
	out1 := fo.Subscribe()
	out2 := fo.Subscribe()

	input := make(chan *model.IndicatorUpdate, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go fo.Run(ctx, input)

	update := &model.IndicatorUpdate{
		Name:   "SMA(9)",
		Symbol: "RELIANCE",
		Value:  decimal.NewFromInt(105),
		Warm:   true,
	}

	input <- update
	time.Sleep(50 * time.Millisecond)

	select {
	case u := <-out1:
		if u.Symbol != "RELIANCE" {
			t.Errorf("out1: expected symbol RELIANCE, got %s", u.Symbol)
		}
	case <-time.After(time.Second):
		t.Fatal("out1: timed out waiting for update")
	}

	select {
	case u := <-out2:
		if u.Name != "SMA(9)" {
			t.Errorf("out2: expected name SMA(9), got %s", u.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("out2: timed out waiting for update")
	}

	cancel()
}

func TestFanOut_DropsOnFullChannel(t *testing.T) {
	fo := New(1)
	_ = fo.Subscribe() // never drained

	drops := make(chan int, 10)
	fo.OnDrop = func(idx int) { drops <- idx }

	input := make(chan *model.IndicatorUpdate, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	for i := 0; i < 3; i++ {
		input <- &model.IndicatorUpdate{Name: "OBV", Symbol: "TCS"}
	}

	select {
	case idx := <-drops:
		if idx != 0 {
			t.Errorf("expected drop on subscriber 0, got %d", idx)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for drop callback")
	}
}

func TestFanOut_ChannelStats(t *testing.T) {
	fo := New(4)
	fo.Subscribe()
	fo.Subscribe()

	input := make(chan *model.IndicatorUpdate, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	// Neither subscriber is drained, so both channels fill up.
	for i := 0; i < 3; i++ {
		input <- &model.IndicatorUpdate{Name: "SMA(9)", Symbol: "INFY"}
	}
	time.Sleep(50 * time.Millisecond)

	stats := fo.ChannelStats()
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 subscribers, got %d", len(stats))
	}
	for i, s := range stats {
		if s.Cap != 4 {
			t.Errorf("subscriber %d: expected cap 4, got %d", i, s.Cap)
		}
		if s.Len != 3 {
			t.Errorf("subscriber %d: expected 3 queued, got %d", i, s.Len)
		}
	}
}
