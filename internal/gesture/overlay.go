package gesture

import (
	"sync"
	"time"

	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

const DefaultOverlayDuration = 1000 * time.Millisecond

const (
	EmojiLike      = "❤️"
	EmojiPass      = "👋"
	EmojiSuperLike = "⭐"
)

// EmojiFor returns the overlay shown after a swipe in the given direction.
func EmojiFor(dir Direction) string {
	if dir == Right {
		return EmojiLike
	}
	return EmojiPass
}

// OverlayTimer shows one emoji at a time and clears it after a fixed
// duration. Showing a new emoji replaces the current one and restarts the
// countdown.
type OverlayTimer struct {
	mu       sync.Mutex
	clock    timer.Clock
	duration time.Duration
	current  string
	gen      uint64
	stop     timer.Stopper
	onChange func(emoji string)
}

func NewOverlayTimer(clock timer.Clock, duration time.Duration, onChange func(emoji string)) *OverlayTimer {
	if duration <= 0 {
		duration = DefaultOverlayDuration
	}
	return &OverlayTimer{clock: clock, duration: duration, onChange: onChange}
}

func (o *OverlayTimer) Show(emoji string) {
	o.mu.Lock()
	if o.stop != nil {
		o.stop.Stop()
	}
	o.gen++
	gen := o.gen
	o.current = emoji
	o.stop = o.clock.AfterFunc(o.duration, func() { o.clear(gen) })
	o.mu.Unlock()

	o.notify(emoji)
}

func (o *OverlayTimer) clear(gen uint64) {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return
	}
	o.current = ""
	o.stop = nil
	o.mu.Unlock()

	o.notify("")
}

func (o *OverlayTimer) Current() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *OverlayTimer) notify(emoji string) {
	if o.onChange != nil {
		o.onChange(emoji)
	}
}
