// Package feed buffers the events the host UI polls for: toasts, gesture
// decisions and overlay changes.
package feed

import (
	"sync"
	"time"
)

const DefaultSize = 100

type Kind string

const (
	KindToast       Kind = "toast"
	KindSwipe       Kind = "swipe"
	KindSuperLike   Kind = "super_like"
	KindShowDetails Kind = "show_details"
	KindOverlay     Kind = "overlay"
)

type Event struct {
	Seq       uint64      `json:"seq"`
	Kind      Kind        `json:"kind"`
	Payload   interface{} `json:"payload,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Feed is a bounded ring of events with increasing sequence numbers. Readers
// that fall further behind than the buffer size miss the oldest events.
type Feed struct {
	mu     sync.RWMutex
	size   int
	events []Event
	next   uint64
	now    func() time.Time
}

func New(size int, now func() time.Time) *Feed {
	if size <= 0 {
		size = DefaultSize
	}
	if now == nil {
		now = time.Now
	}
	return &Feed{size: size, next: 1, now: now}
}

func (f *Feed) Publish(kind Kind, payload interface{}) Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev := Event{Seq: f.next, Kind: kind, Payload: payload, CreatedAt: f.now()}
	f.next++
	f.events = append(f.events, ev)
	if len(f.events) > f.size {
		f.events = append(f.events[:0:0], f.events[len(f.events)-f.size:]...)
	}
	return ev
}

// Since returns the events with a sequence number greater than seq, oldest
// first.
func (f *Feed) Since(seq uint64) []Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []Event{}
	for _, ev := range f.events {
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the sequence number of the newest event, or 0.
func (f *Feed) Last() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.next - 1
}
