package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRepeatedTriggersRunOnce(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	d := New(100*time.Millisecond, func() {
		calls.Add(1)
		done <- struct{}{}
	})
	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestStopCancelsPendingCall(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })
	d.Trigger()
	if !d.Stop() {
		t.Fatal("Stop reported nothing pending")
	}
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("cancelled call ran")
	}
	if d.Stop() {
		t.Fatal("second Stop reported a pending call")
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })
	d.Flush()
	if calls.Load() != 0 {
		t.Fatal("Flush ran without a pending call")
	}
	d.Trigger()
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	d.Flush()
	if calls.Load() != 1 || d.Pending() {
		t.Fatalf("calls = %d pending = %v", calls.Load(), d.Pending())
	}
}

func TestFuncCancel(t *testing.T) {
	var calls atomic.Int32
	call, cancel := Func(20*time.Millisecond, func() { calls.Add(1) })
	call()
	cancel()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("cancelled call ran")
	}
}
