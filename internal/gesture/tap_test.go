package gesture

import (
	"testing"
	"time"

	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

type tapCounts struct {
	superLikes []string
	details    []string
}

func newRecognizer(clock timer.Clock) (*TapRecognizer, *tapCounts) {
	c := &tapCounts{}
	r := NewTapRecognizer(clock, DefaultDoubleTapWindow, TapCallbacks{
		OnSuperLike:   func(id string) { c.superLikes = append(c.superLikes, id) },
		OnShowDetails: func(id string) { c.details = append(c.details, id) },
	})
	return r, c
}

func TestDoubleTapIsSuperLike(t *testing.T) {
	clock := timer.NewFake(time.Unix(0, 0))
	r, c := newRecognizer(clock)

	if got := r.Tap("42"); got != TapPending {
		t.Fatalf("first tap = %s, want pending", got)
	}
	clock.Advance(200 * time.Millisecond)
	if got := r.Tap("42"); got != TapSuperLike {
		t.Fatalf("second tap = %s, want super_like", got)
	}
	clock.Advance(time.Second)

	if len(c.superLikes) != 1 {
		t.Errorf("super-likes = %d, want 1", len(c.superLikes))
	}
	if len(c.details) != 0 {
		t.Errorf("show-details = %d, want 0", len(c.details))
	}
}

func TestSpacedTapsAreIndependent(t *testing.T) {
	clock := timer.NewFake(time.Unix(0, 0))
	r, c := newRecognizer(clock)

	r.Tap("42")
	clock.Advance(300 * time.Millisecond)
	if got := r.Tap("42"); got != TapPending {
		t.Fatalf("second tap = %s, want pending", got)
	}
	clock.Advance(300 * time.Millisecond)

	if len(c.superLikes) != 0 {
		t.Errorf("super-likes = %d, want 0", len(c.superLikes))
	}
	if len(c.details) != 2 {
		t.Errorf("show-details = %d, want 2", len(c.details))
	}
}

func TestTapsOnDifferentCards(t *testing.T) {
	clock := timer.NewFake(time.Unix(0, 0))
	r, c := newRecognizer(clock)

	r.Tap("a")
	clock.Advance(100 * time.Millisecond)
	if got := r.Tap("b"); got != TapPending {
		t.Fatalf("tap on another card = %s, want pending", got)
	}
	clock.Advance(time.Second)

	if len(c.superLikes) != 0 || len(c.details) != 2 {
		t.Errorf("got %d super-likes and %d details, want 0 and 2", len(c.superLikes), len(c.details))
	}
}

func TestResetDropsPendingTaps(t *testing.T) {
	clock := timer.NewFake(time.Unix(0, 0))
	r, c := newRecognizer(clock)

	r.Tap("a")
	r.Reset()
	clock.Advance(time.Second)
	if len(c.details) != 0 {
		t.Errorf("show-details after reset = %d, want 0", len(c.details))
	}
}
