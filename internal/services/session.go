package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swipepad/swipepad-gobackend/internal/batch"
	"github.com/swipepad/swipepad-gobackend/internal/currency"
	"github.com/swipepad/swipepad-gobackend/internal/feed"
	"github.com/swipepad/swipepad-gobackend/internal/gesture"
	"github.com/swipepad/swipepad-gobackend/internal/models"
	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

const (
	defaultCommitTimeout = 15 * time.Second
	commitFailedMessage  = "Donation failed, please try again"
)

type DonationRecorder interface {
	RecordBatch(ctx context.Context, batch models.Batch) error
}

type SettingsLoader interface {
	Load(ctx context.Context, userID string) models.UserSettings
}

type SessionConfig struct {
	BatchWindow     time.Duration
	DoubleTapWindow time.Duration
	OverlayDuration time.Duration
	IdleTTL         time.Duration
	CommitTimeout   time.Duration
	FeedSize        int
	Profiles        gesture.Profiles
	Currency        currency.Code
}

// Session is the interaction state of one user: the donation queue, the tap
// recognizer, the reaction overlay and the event feed the client polls.
type Session struct {
	UserID  string
	Queue   *batch.Queue
	Taps    *gesture.TapRecognizer
	Overlay *gesture.OverlayTimer
	Feed    *feed.Feed

	// inUse is read-held by requests working on the session; Reap only
	// drops a session it can write-lock.
	inUse sync.RWMutex

	mu       sync.Mutex
	settings models.UserSettings
	engine   *gesture.Engine
	titles   map[string]string
	lastSeen time.Time
}

func (s *Session) Settings() models.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) Engine() *gesture.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

func (s *Session) rememberTitle(campaignID, title string) {
	if title == "" {
		return
	}
	s.mu.Lock()
	s.titles[campaignID] = title
	s.mu.Unlock()
}

func (s *Session) title(campaignID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.titles[campaignID]
}

type SwipeRequest struct {
	CampaignID    string  `json:"campaign_id"`
	CampaignTitle string  `json:"campaign_title"`
	Offset        float64 `json:"offset"`
	Velocity      float64 `json:"velocity"`
}

type SwipeResult struct {
	Decision      gesture.SwipeDecision `json:"decision"`
	TransactionID string                `json:"transaction_id,omitempty"`
}

// SessionManager owns one Session per user and connects committed batches to
// persistence.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	clock    timer.Clock
	cfg      SessionConfig
	recorder DonationRecorder
	settings SettingsLoader
	commits  sync.WaitGroup
	// closing is set by Shutdown; later commits run on the caller's goroutine.
	closing bool
}

func NewSessionManager(clock timer.Clock, cfg SessionConfig, recorder DonationRecorder, settings SettingsLoader) *SessionManager {
	if cfg.Profiles == nil {
		cfg.Profiles = gesture.DefaultProfiles()
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = defaultCommitTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = currency.Cents
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		clock:    clock,
		cfg:      cfg,
		recorder: recorder,
		settings: settings,
	}
}

// Session returns the user's session, creating it on first use.
func (m *SessionManager) Session(ctx context.Context, userID string) *Session {
	return m.lookup(ctx, userID, false)
}

// acquire is Session for requests that change the session. The session is
// not reaped until release is called.
func (m *SessionManager) acquire(ctx context.Context, userID string) (s *Session, release func()) {
	s = m.lookup(ctx, userID, true)
	return s, s.inUse.RUnlock
}

func (m *SessionManager) lookup(ctx context.Context, userID string, pin bool) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.useLocked(s, pin)
		m.mu.Unlock()
		return s
	}
	m.mu.Unlock()

	settings := m.settings.Load(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = m.newSession(userID, settings)
		m.sessions[userID] = s
		log.Printf("Session started for user %s", userID)
	}
	m.useLocked(s, pin)
	return s
}

// useLocked marks s as seen, and pinned if asked. Reap only write-locks
// inUse while holding m.mu, so the read lock here never waits.
func (m *SessionManager) useLocked(s *Session, pin bool) {
	if pin {
		s.inUse.RLock()
	}
	s.touch(m.clock.Now())
}

func (m *SessionManager) newSession(userID string, settings models.UserSettings) *Session {
	s := &Session{
		UserID:   userID,
		Feed:     feed.New(m.cfg.FeedSize, m.clock.Now),
		settings: settings,
		engine:   gesture.NewEngine(m.cfg.Profiles.Get(settings.GestureVariant)),
		titles:   make(map[string]string),
		lastSeen: m.clock.Now(),
	}

	s.Queue = batch.New(m.clock, batch.Options{
		UserID:   userID,
		Window:   m.cfg.BatchWindow,
		Currency: m.currencyFor(settings),
		Notify: func(n models.Notification) {
			s.Feed.Publish(feed.KindToast, n)
		},
		OnCommit: func(b models.Batch) {
			m.commit(s, b)
		},
	})

	s.Overlay = gesture.NewOverlayTimer(m.clock, m.cfg.OverlayDuration, func(emoji string) {
		s.Feed.Publish(feed.KindOverlay, map[string]string{"emoji": emoji})
	})

	s.Taps = gesture.NewTapRecognizer(m.clock, m.cfg.DoubleTapWindow, gesture.TapCallbacks{
		OnSuperLike: func(cardID string) {
			s.Feed.Publish(feed.KindSuperLike, map[string]string{"campaign_id": cardID})
			s.Overlay.Show(gesture.EmojiSuperLike)
			if _, err := s.Queue.Add(s.Settings().SuperLikeAmount, cardID, s.title(cardID)); err != nil {
				log.Printf("Failed to queue super-like for user %s: %v", userID, err)
			}
		},
		OnShowDetails: func(cardID string) {
			s.Feed.Publish(feed.KindShowDetails, map[string]string{"campaign_id": cardID})
		},
	})
	return s
}

func (m *SessionManager) currencyFor(settings models.UserSettings) currency.Code {
	if code, err := currency.Parse(settings.Currency); err == nil {
		return code
	}
	return m.cfg.Currency
}

func (m *SessionManager) commit(s *Session, b models.Batch) {
	m.mu.Lock()
	closing := m.closing
	if !closing {
		m.commits.Add(1)
	}
	m.mu.Unlock()

	if closing {
		m.record(s, b)
		return
	}
	go func() {
		defer m.commits.Done()
		m.record(s, b)
	}()
}

func (m *SessionManager) record(s *Session, b models.Batch) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CommitTimeout)
	defer cancel()
	if err := m.recorder.RecordBatch(ctx, b); err != nil {
		log.Printf("Failed to record batch %s for user %s: %v", b.ID, s.UserID, err)
		s.Feed.Publish(feed.KindToast, models.Notification{Message: commitFailedMessage})
	}
}

// Swipe evaluates a drag release. A valid right swipe queues the user's
// default amount for the campaign.
func (m *SessionManager) Swipe(ctx context.Context, userID string, req SwipeRequest) (SwipeResult, error) {
	s, release := m.acquire(ctx, userID)
	defer release()
	s.rememberTitle(req.CampaignID, req.CampaignTitle)

	var result SwipeResult
	var addErr error
	result.Decision = s.Engine().Commit(req.Offset, req.Velocity, func(dir gesture.Direction) {
		s.Feed.Publish(feed.KindSwipe, map[string]string{
			"campaign_id": req.CampaignID,
			"direction":   string(dir),
		})
		s.Overlay.Show(gesture.EmojiFor(dir))
		if dir == gesture.Right {
			result.TransactionID, addErr = s.Queue.Add(s.Settings().DefaultAmount, req.CampaignID, req.CampaignTitle)
		}
	})
	return result, addErr
}

func (m *SessionManager) Drag(ctx context.Context, userID string, x float64) gesture.Feedback {
	return m.Session(ctx, userID).Engine().Drag(x)
}

func (m *SessionManager) Tap(ctx context.Context, userID, campaignID, campaignTitle string) gesture.TapResult {
	s, release := m.acquire(ctx, userID)
	defer release()
	s.rememberTitle(campaignID, campaignTitle)
	return s.Taps.Tap(campaignID)
}

func (m *SessionManager) AddTransaction(ctx context.Context, userID string, amount decimal.Decimal, campaignID, campaignTitle string) (string, error) {
	s, release := m.acquire(ctx, userID)
	defer release()
	s.rememberTitle(campaignID, campaignTitle)
	return s.Queue.Add(amount, campaignID, campaignTitle)
}

func (m *SessionManager) CancelTransaction(ctx context.Context, userID, transactionID string) bool {
	s, release := m.acquire(ctx, userID)
	defer release()
	return s.Queue.Cancel(transactionID)
}

func (m *SessionManager) Flush(ctx context.Context, userID string) (models.Batch, bool) {
	s, release := m.acquire(ctx, userID)
	defer release()
	return s.Queue.Flush()
}

func (m *SessionManager) Snapshot(ctx context.Context, userID string) models.QueueSnapshot {
	return m.Session(ctx, userID).Queue.Snapshot()
}

func (m *SessionManager) Events(ctx context.Context, userID string, since uint64) []feed.Event {
	return m.Session(ctx, userID).Feed.Since(since)
}

// ApplySettings updates a live session after the user saved new settings.
func (m *SessionManager) ApplySettings(userID string, settings models.UserSettings) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.settings = settings
	s.engine = gesture.NewEngine(m.cfg.Profiles.Get(settings.GestureVariant))
	s.mu.Unlock()
	s.Queue.SetCurrency(m.currencyFor(settings))
}

// Reap drops sessions with nothing pending that have not been used since
// IdleTTL before now and are not in use by a request. It returns how many
// were dropped.
func (m *SessionManager) Reap(now time.Time) int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var idle []*Session
	for userID, s := range m.sessions {
		if !s.inUse.TryLock() {
			continue
		}
		if s.idleSince(cutoff) && s.Queue.Idle(cutoff) {
			delete(m.sessions, userID)
			idle = append(idle, s)
		}
		s.inUse.Unlock()
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Taps.Reset()
	}
	if len(idle) > 0 {
		log.Printf("Reaped %d idle sessions", len(idle))
	}
	return len(idle)
}

// Run reaps idle sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Session reaper started (interval %s, idle ttl %s)", interval, m.cfg.IdleTTL)
	for {
		select {
		case <-ctx.Done():
			log.Println("Session reaper stopped")
			return
		case <-ticker.C:
			m.Reap(m.clock.Now())
		}
	}
}

// Shutdown commits every pending queue and waits for in-flight commits.
// Batches committed after Shutdown starts are recorded before the commit
// returns.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	m.closing = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	flushed := 0
	for _, s := range sessions {
		s.Taps.Reset()
		if _, ok := s.Queue.Flush(); ok {
			flushed++
		}
	}
	log.Printf("Flushed %d pending batches on shutdown", flushed)
	m.Wait()
}

// Wait blocks until every started commit has finished.
func (m *SessionManager) Wait() {
	m.commits.Wait()
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}
