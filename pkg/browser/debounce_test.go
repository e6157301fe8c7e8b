package browser

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerLatestWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var got atomic.Int32
	var runs atomic.Int32
	done := make(chan struct{}, 3)

	for i := int32(1); i <= 3; i++ {
		d.Trigger(func() {
			got.Store(i)
			runs.Add(1)
			done <- struct{}{}
		})
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != 1 || got.Load() != 3 {
		t.Errorf("runs = %d, last = %d; want 1 run of call 3", runs.Load(), got.Load())
	}
	if d.Pending() {
		t.Error("still pending after run")
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger(func() { ran.Store(true) })
	if !d.Pending() {
		t.Error("expected pending")
	}
	d.Stop()
	time.Sleep(30 * time.Millisecond)
	if ran.Load() {
		t.Error("stopped function ran")
	}
}

func TestDebouncerZeroDelay(t *testing.T) {
	d := NewDebouncer(0)
	ran := false
	d.Trigger(func() { ran = true })
	if !ran {
		t.Error("zero delay should run synchronously")
	}
}
