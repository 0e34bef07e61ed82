package timer

import (
	"testing"
	"time"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	clock := NewFake(time.Unix(0, 0))
	var order []string

	clock.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(time.Second, func() { order = append(order, "a") })

	clock.Advance(1500 * time.Millisecond)
	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("after 1.5s fired %v, want [a]", order)
	}

	clock.Advance(time.Second)
	if len(order) != 2 || order[1] != "b" {
		t.Fatalf("after 2.5s fired %v, want [a b]", order)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", clock.Pending())
	}
}

func TestFakeStop(t *testing.T) {
	clock := NewFake(time.Unix(0, 0))
	fired := false
	h := clock.AfterFunc(time.Second, func() { fired = true })

	if !h.Stop() {
		t.Fatal("Stop on a live timer returned false")
	}
	if h.Stop() {
		t.Fatal("second Stop returned true")
	}
	clock.Advance(time.Minute)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeCallbackCanReschedule(t *testing.T) {
	clock := NewFake(time.Unix(0, 0))
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(time.Second, tick)
		}
	}
	clock.AfterFunc(time.Second, tick)

	clock.Advance(10 * time.Second)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if got, want := clock.Now(), time.Unix(10, 0); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}
