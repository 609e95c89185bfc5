package ringbuf

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tastreamv1/internal/model"
)

// flatBar builds a flat bar (all prices = price) for the given symbol.
func flatBar(t *testing.T, symbol string, price int64) model.Bar {
	t.Helper()
	p := decimal.NewFromInt(price)
	b, err := model.NewBarBuilder().
		Symbol(symbol).
		Open(p).High(p).Low(p).Close(p).
		Volume(decimal.Zero).
		Build()
	if err != nil {
		t.Fatalf("flatBar(%s, %d): %v", symbol, price, err)
	}
	return b
}

func TestRing_BasicPushPop(t *testing.T) {
	r := New(4) // rounds to 4

	b1 := flatBar(t, "A", 100)
	b2 := flatBar(t, "B", 200)

	if !r.Push(b1) {
		t.Fatal("push b1 should succeed")
	}
	if !r.Push(b2) {
		t.Fatal("push b2 should succeed")
	}

	if r.Len() != 2 {
		t.Fatalf("expected len=2, got %d", r.Len())
	}

	got, ok := r.Pop()
	if !ok || got.Symbol() != "A" {
		t.Fatalf("expected A, got %v ok=%v", got.Symbol(), ok)
	}

	got, ok = r.Pop()
	if !ok || got.Symbol() != "B" {
		t.Fatalf("expected B, got %v ok=%v", got.Symbol(), ok)
	}

	_, ok = r.Pop()
	if ok {
		t.Fatal("pop from empty should return false")
	}
}

func TestRing_Overflow(t *testing.T) {
	r := New(2) // capacity = 2

	r.Push(flatBar(t, "1", 1))
	r.Push(flatBar(t, "2", 2))

	// Buffer is full
	ok := r.Push(flatBar(t, "3", 3))
	if ok {
		t.Fatal("push to full buffer should return false")
	}
	if r.Overflow() != 1 {
		t.Fatalf("expected overflow=1, got %d", r.Overflow())
	}
}

func TestRing_Wraparound(t *testing.T) {
	r := New(4)

	// Fill and drain multiple times to test wraparound
	for round := 0; round < 5; round++ {
		for i := 0; i < 4; i++ {
			if !r.Push(flatBar(t, "X", int64(round*10+i))) {
				t.Fatalf("round %d push %d failed", round, i)
			}
		}
		for i := 0; i < 4; i++ {
			b, ok := r.Pop()
			if !ok {
				t.Fatalf("round %d pop %d failed", round, i)
			}
			if !b.Open().Equal(decimal.NewFromInt(int64(round*10 + i))) {
				t.Fatalf("round %d pop %d: expected open=%d, got %s", round, i, round*10+i, b.Open())
			}
		}
	}
}

func TestRing_SPSC_Concurrent(t *testing.T) {
	const count = 100_000
	r := New(1024)

	bars := make([]model.Bar, count)
	for i := range bars {
		bars[i] = flatBar(t, "X", int64(i))
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Producer
	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			for !r.Push(bars[i]) {
				// yield so the consumer makes progress on a single CPU
				runtime.Gosched()
			}
		}
	}()

	// Consumer
	received := make([]model.Bar, 0, count)
	go func() {
		defer wg.Done()
		for len(received) < count {
			b, ok := r.Pop()
			if ok {
				received = append(received, b)
			} else {
				runtime.Gosched()
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("SPSC test timed out")
	}

	// Verify ordering
	for i, b := range received {
		if !b.Open().Equal(decimal.NewFromInt(int64(i))) {
			t.Fatalf("at index %d: expected %d, got %s", i, i, b.Open())
		}
	}
}

func TestRing_NextPow2(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {7, 8}, {8, 8}, {9, 16}, {1023, 1024},
	}
	for _, tc := range cases {
		got := nextPow2(tc.in)
		if got != tc.want {
			t.Errorf("nextPow2(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
