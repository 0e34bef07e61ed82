package gesture

import (
	"sync"
	"time"

	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

const DefaultDoubleTapWindow = 300 * time.Millisecond

type TapResult string

const (
	// TapPending means the tap is waiting for a possible second tap.
	TapPending   TapResult = "pending"
	TapSuperLike TapResult = "super_like"
)

type TapCallbacks struct {
	OnSuperLike   func(cardID string)
	OnShowDetails func(cardID string)
}

type pendingTap struct {
	at   time.Time
	stop timer.Stopper
}

// TapRecognizer separates double taps from single taps per card. A second
// tap inside the window is a super-like and suppresses the details action;
// otherwise the single tap resolves to show-details when the window closes.
type TapRecognizer struct {
	mu      sync.Mutex
	clock   timer.Clock
	window  time.Duration
	cb      TapCallbacks
	pending map[string]*pendingTap
}

func NewTapRecognizer(clock timer.Clock, window time.Duration, cb TapCallbacks) *TapRecognizer {
	if window <= 0 {
		window = DefaultDoubleTapWindow
	}
	return &TapRecognizer{
		clock:   clock,
		window:  window,
		cb:      cb,
		pending: make(map[string]*pendingTap),
	}
}

func (r *TapRecognizer) Tap(cardID string) TapResult {
	now := r.clock.Now()

	r.mu.Lock()
	var expired bool
	if p, ok := r.pending[cardID]; ok {
		delete(r.pending, cardID)
		stopped := p.stop.Stop()
		if now.Sub(p.at) < r.window && stopped {
			r.mu.Unlock()
			if r.cb.OnSuperLike != nil {
				r.cb.OnSuperLike(cardID)
			}
			return TapSuperLike
		}
		// The window closed before the timer callback ran. The callback will
		// find its entry replaced, so the old tap resolves here.
		expired = true
	}

	p := &pendingTap{at: now}
	p.stop = r.clock.AfterFunc(r.window, func() { r.expire(cardID, p) })
	r.pending[cardID] = p
	r.mu.Unlock()

	if expired && r.cb.OnShowDetails != nil {
		r.cb.OnShowDetails(cardID)
	}
	return TapPending
}

func (r *TapRecognizer) expire(cardID string, p *pendingTap) {
	r.mu.Lock()
	if r.pending[cardID] != p {
		r.mu.Unlock()
		return
	}
	delete(r.pending, cardID)
	r.mu.Unlock()

	if r.cb.OnShowDetails != nil {
		r.cb.OnShowDetails(cardID)
	}
}

// Reset drops every pending tap without firing callbacks.
func (r *TapRecognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.pending {
		p.stop.Stop()
		delete(r.pending, id)
	}
}
