package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerSetFires(t *testing.T) {
	ts := NewTimerSet[string]()
	fired := make(chan string, 1)
	ts.Set("a", time.Millisecond, func(key string) error {
		fired <- key
		return nil
	})

	select {
	case k := <-fired:
		if k != "a" {
			t.Errorf("fired for %s", k)
		}
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerSetStop(t *testing.T) {
	ts := NewTimerSet[string]()
	var calls int32
	ts.Set("a", 50*time.Millisecond, func(string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if !ts.Pending("a") {
		t.Fatal("expected pending timer")
	}
	ts.Stop("a")
	time.Sleep(100 * time.Millisecond)

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("stopped timer fired %d times", n)
	}
	if ts.Pending("a") {
		t.Error("stopped timer still pending")
	}
}

func TestTimerSetReplace(t *testing.T) {
	ts := NewTimerSet[int]()
	var first, second int32
	ts.Set(1, 50*time.Millisecond, func(int) error {
		atomic.AddInt32(&first, 1)
		return nil
	})
	ts.Set(1, time.Millisecond, func(int) error {
		atomic.AddInt32(&second, 1)
		return nil
	})
	time.Sleep(100 * time.Millisecond)

	f, s := atomic.LoadInt32(&first), atomic.LoadInt32(&second)
	if f != 0 || s != 1 {
		t.Errorf("first=%d second=%d", f, s)
	}
}

func TestTimerSetReplaceKeepsNewTimer(t *testing.T) {
	ts := NewTimerSet[int]()
	noop := func(int) error { return nil }
	ts.Set(1, time.Hour, noop)
	ts.Set(1, time.Hour, noop)
	defer ts.Stop(1)

	// the replaced timer's goroutine must not evict its successor
	time.Sleep(20 * time.Millisecond)
	if !ts.Pending(1) {
		t.Error("replacement timer was dropped")
	}
}
