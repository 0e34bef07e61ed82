package gesture

import (
	"testing"
	"time"

	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

func TestOverlayClearsAfterDuration(t *testing.T) {
	clock := timer.NewFake(time.Unix(0, 0))
	var changes []string
	o := NewOverlayTimer(clock, DefaultOverlayDuration, func(e string) { changes = append(changes, e) })

	o.Show(EmojiFor(Right))
	if o.Current() != EmojiLike {
		t.Fatalf("current = %q, want %q", o.Current(), EmojiLike)
	}

	clock.Advance(999 * time.Millisecond)
	if o.Current() != EmojiLike {
		t.Fatalf("overlay cleared early")
	}
	clock.Advance(time.Millisecond)
	if o.Current() != "" {
		t.Fatalf("current = %q after 1s, want empty", o.Current())
	}
	if len(changes) != 2 || changes[1] != "" {
		t.Errorf("changes = %q, want [%q \"\"]", changes, EmojiLike)
	}
}

func TestOverlayReplaceRestartsTimer(t *testing.T) {
	clock := timer.NewFake(time.Unix(0, 0))
	o := NewOverlayTimer(clock, time.Second, nil)

	o.Show(EmojiPass)
	clock.Advance(600 * time.Millisecond)
	o.Show(EmojiSuperLike)
	clock.Advance(600 * time.Millisecond)

	if o.Current() != EmojiSuperLike {
		t.Fatalf("current = %q, want %q", o.Current(), EmojiSuperLike)
	}
	clock.Advance(400 * time.Millisecond)
	if o.Current() != "" {
		t.Fatalf("current = %q, want cleared", o.Current())
	}
}
