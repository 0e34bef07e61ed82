// Package batch holds donation intents for a short undo window and commits
// them together, so a burst of swipes turns into one donation batch.
package batch

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swipepad/swipepad-gobackend/internal/currency"
	"github.com/swipepad/swipepad-gobackend/internal/models"
	"github.com/swipepad/swipepad-gobackend/internal/timer"
)

const (
	DefaultWindow = 5 * time.Second

	// maxHistory bounds the completed and cancelled lists kept per queue.
	maxHistory = 100
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrEmptyCampaign = errors.New("campaign id is required")
)

type Options struct {
	UserID   string
	Window   time.Duration
	Currency currency.Code
	// Notify receives toast requests in the order the queue changed. It must
	// not call back into the queue.
	Notify func(models.Notification)
	// OnCommit receives every non-empty batch after it has been moved to the
	// completed list.
	OnCommit func(models.Batch)
	NewID    func() string
}

// Queue is one user's batch of pending donations. Entries move from pending
// to either completed (timer or Flush) or cancelled (Cancel); both are final.
type Queue struct {
	mu           sync.Mutex
	notifyMu     sync.Mutex
	clock        timer.Clock
	opts         Options
	pending      []models.PendingTransaction
	completed    []models.PendingTransaction
	cancelled    []models.PendingTransaction
	stop         timer.Stopper
	gen          uint64
	lastActivity time.Time
}

func New(clock timer.Clock, opts Options) *Queue {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Currency == "" {
		opts.Currency = currency.Cents
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Queue{clock: clock, opts: opts, lastActivity: clock.Now()}
}

// Add queues a donation and returns its id. The batch timer is armed when
// the queue goes from empty to non-empty; later adds do not extend it.
func (q *Queue) Add(amount decimal.Decimal, campaignID, campaignTitle string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if campaignID == "" {
		return "", ErrEmptyCampaign
	}

	q.mu.Lock()
	tx := models.PendingTransaction{
		ID:            q.opts.NewID(),
		Amount:        amount,
		CampaignID:    campaignID,
		CampaignTitle: campaignTitle,
		Timestamp:     q.clock.Now(),
		Status:        models.StatusPending,
	}
	q.pending = append(q.pending, tx)
	q.lastActivity = tx.Timestamp
	if q.stop == nil {
		q.armLocked()
	}

	id := tx.ID
	q.publishLocked(models.Notification{
		Message:     fmt.Sprintf("Donated %s to %s", currency.Format(amount, q.opts.Currency), displayTitle(tx)),
		Description: fmt.Sprintf("Sending in %s", q.opts.Window),
		Action: &models.NotificationAction{
			Label:  "Undo",
			Method: http.MethodDelete,
			Path:   "/api/transactions/" + id,
			Run:    func() { q.Cancel(id) },
		},
	})
	return id, nil
}

// Cancel discards a pending entry. It reports false when the id is unknown
// or the entry was already batched.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	idx := -1
	for i, tx := range q.pending {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return false
	}

	tx := q.pending[idx]
	tx.Status = models.StatusCancelled
	q.pending = append(q.pending[:idx], q.pending[idx+1:]...)
	q.cancelled = appendBounded(q.cancelled, tx)
	q.lastActivity = q.clock.Now()
	if len(q.pending) == 0 {
		q.disarmLocked()
	}
	q.publishLocked(models.Notification{
		Message: fmt.Sprintf("Donation to %s cancelled", displayTitle(tx)),
	})
	return true
}

// Flush commits everything pending right away. It reports false when there
// was nothing to commit.
func (q *Queue) Flush() (models.Batch, bool) {
	q.mu.Lock()
	q.disarmLocked()
	b, ok := q.takeLocked()
	if !ok {
		q.mu.Unlock()
		return b, false
	}
	q.finishLocked(b)
	return b, true
}

func (q *Queue) fire(gen uint64) {
	q.mu.Lock()
	if gen != q.gen || q.stop == nil {
		q.mu.Unlock()
		return
	}
	q.stop = nil
	b, ok := q.takeLocked()
	if !ok {
		q.mu.Unlock()
		return
	}
	q.finishLocked(b)
}

func (q *Queue) armLocked() {
	q.gen++
	gen := q.gen
	q.stop = q.clock.AfterFunc(q.opts.Window, func() { q.fire(gen) })
}

func (q *Queue) disarmLocked() {
	if q.stop != nil {
		q.stop.Stop()
		q.stop = nil
	}
	q.gen++
}

func (q *Queue) takeLocked() (models.Batch, bool) {
	if len(q.pending) == 0 {
		return models.Batch{}, false
	}

	now := q.clock.Now()
	b := models.Batch{
		ID:           q.opts.NewID(),
		UserID:       q.opts.UserID,
		Transactions: make([]models.PendingTransaction, 0, len(q.pending)),
		Total:        decimal.Zero,
		CommittedAt:  now,
	}
	for _, tx := range q.pending {
		tx.Status = models.StatusCompleted
		b.Total = b.Total.Add(tx.Amount)
		b.Transactions = append(b.Transactions, tx)
		q.completed = appendBounded(q.completed, tx)
	}
	q.pending = nil
	q.lastActivity = now
	return b, true
}

// finishLocked announces a committed batch and hands it to OnCommit. It
// releases q.mu.
func (q *Queue) finishLocked(b models.Batch) {
	var n models.Notification
	if len(b.Transactions) > 1 {
		n = models.Notification{
			Message:     fmt.Sprintf("Batched %d donations", len(b.Transactions)),
			Description: "Total " + currency.Format(b.Total, q.opts.Currency),
		}
	} else {
		tx := b.Transactions[0]
		n = models.Notification{
			Message:     fmt.Sprintf("Donation to %s sent", displayTitle(tx)),
			Description: currency.Format(tx.Amount, q.opts.Currency),
		}
	}
	q.publishLocked(n)

	if q.opts.OnCommit != nil {
		q.opts.OnCommit(b)
	}
}

// publishLocked releases q.mu and delivers n. Notifications are delivered in
// the order their state changes were made, so Notify must not call back
// into the queue.
func (q *Queue) publishLocked(n models.Notification) {
	q.notifyMu.Lock()
	q.mu.Unlock()
	defer q.notifyMu.Unlock()

	if q.opts.Notify != nil {
		q.opts.Notify(n)
	}
}

// SetCurrency changes the currency used in toast messages from now on.
func (q *Queue) SetCurrency(code currency.Code) {
	q.mu.Lock()
	q.opts.Currency = code
	q.mu.Unlock()
}

func (q *Queue) Snapshot() models.QueueSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return models.QueueSnapshot{
		Pending:   clone(q.pending),
		Completed: clone(q.completed),
		Cancelled: clone(q.cancelled),
	}
}

func (q *Queue) Pending() []models.PendingTransaction   { return q.Snapshot().Pending }
func (q *Queue) Completed() []models.PendingTransaction { return q.Snapshot().Completed }
func (q *Queue) Cancelled() []models.PendingTransaction { return q.Snapshot().Cancelled }

// Idle reports whether the queue has nothing pending and no activity since
// the cutoff.
func (q *Queue) Idle(cutoff time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0 && q.lastActivity.Before(cutoff)
}

func displayTitle(tx models.PendingTransaction) string {
	if tx.CampaignTitle != "" {
		return tx.CampaignTitle
	}
	return "campaign " + tx.CampaignID
}

func appendBounded(list []models.PendingTransaction, tx models.PendingTransaction) []models.PendingTransaction {
	list = append(list, tx)
	if len(list) > maxHistory {
		list = append(list[:0:0], list[len(list)-maxHistory:]...)
	}
	return list
}

func clone(list []models.PendingTransaction) []models.PendingTransaction {
	out := make([]models.PendingTransaction, len(list))
	copy(out, list)
	return out
}
