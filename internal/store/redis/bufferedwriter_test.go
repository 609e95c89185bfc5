package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"tastreamv1/internal/model"
)

func TestBufferedWriter_BuffersWhileOpen(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Hour)
	bw := NewBufferedWriter(context.Background(), &Writer{}, cb, 100)

	// Trip the breaker without touching the writer
	cb.Execute(func() error { return errors.New("fail") })
	if cb.CurrentState() != StateOpen {
		t.Fatal("expected open circuit")
	}

	buffered := 0
	bw.OnBuffer = func() { buffered++ }

	for i := 0; i < 3; i++ {
		if err := bw.WriteUpdate(&model.IndicatorUpdate{Name: "OBV", Symbol: "TCS"}); err != nil {
			t.Fatalf("buffered write should not error: %v", err)
		}
	}

	if bw.PendingCount() != 3 {
		t.Errorf("expected 3 pending, got %d", bw.PendingCount())
	}
	if buffered != 3 {
		t.Errorf("expected 3 OnBuffer calls, got %d", buffered)
	}
}

func TestBufferedWriter_DropsOldestWhenFull(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Hour)
	bw := NewBufferedWriter(context.Background(), &Writer{}, cb, 2)

	cb.Execute(func() error { return errors.New("fail") })

	for i := 0; i < 5; i++ {
		bw.WriteUpdate(&model.IndicatorUpdate{Name: "OBV", Symbol: "TCS"})
	}

	if bw.PendingCount() != 2 {
		t.Errorf("expected capped buffer of 2, got %d", bw.PendingCount())
	}
}
