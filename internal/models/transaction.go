package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// PendingTransaction is one donation intent held in a user's queue. It is
// never written to the database while pending.
type PendingTransaction struct {
	ID            string            `json:"id"`
	Amount        decimal.Decimal   `json:"amount"`
	CampaignID    string            `json:"campaign_id"`
	CampaignTitle string            `json:"campaign_title"`
	Timestamp     time.Time         `json:"timestamp"`
	Status        TransactionStatus `json:"status"`
}

// Batch is the result of one queue flush.
type Batch struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	Transactions []PendingTransaction `json:"transactions"`
	Total        decimal.Decimal      `json:"total"`
	CommittedAt  time.Time            `json:"committed_at"`
}

// QueueSnapshot is a point-in-time copy of a user's queue.
type QueueSnapshot struct {
	Pending   []PendingTransaction `json:"pending"`
	Completed []PendingTransaction `json:"completed"`
	Cancelled []PendingTransaction `json:"cancelled"`
}
